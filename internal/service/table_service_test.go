package service

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/models"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
)

type timetableStoreStub struct {
	rows     []models.TeacherTimetable
	replaced []models.TeacherTimetable
	err      error
}

func (s *timetableStoreStub) List(ctx context.Context) ([]models.TeacherTimetable, error) {
	return s.rows, s.err
}

func (s *timetableStoreStub) Replace(ctx context.Context, rows []models.TeacherTimetable) error {
	s.replaced = rows
	return s.err
}

type dutyStoreStub struct {
	rows     []models.DutyAssignment
	replaced []models.DutyAssignment
}

func (s *dutyStoreStub) List(ctx context.Context) ([]models.DutyAssignment, error) {
	return s.rows, nil
}

func (s *dutyStoreStub) Replace(ctx context.Context, rows []models.DutyAssignment) error {
	s.replaced = rows
	return nil
}

type baselineStoreStub struct {
	rows     []models.BaselineCount
	replaced []models.BaselineCount
}

func (s *baselineStoreStub) List(ctx context.Context) ([]models.BaselineCount, error) {
	return s.rows, nil
}

func (s *baselineStoreStub) Replace(ctx context.Context, rows []models.BaselineCount) error {
	s.replaced = rows
	return nil
}

func newTableService() (*TableService, *timetableStoreStub, *dutyStoreStub, *baselineStoreStub) {
	tt := &timetableStoreStub{}
	duties := &dutyStoreStub{}
	baseline := &baselineStoreStub{}
	return NewTableService(tt, duties, baseline, nil, nil, nil), tt, duties, baseline
}

func TestReplaceTimetablesNormalises(t *testing.T) {
	svc, store, _, _ := newTableService()

	resp, err := svc.ReplaceTimetables(context.Background(), dto.ReplaceTimetablesRequest{Timetables: []dto.TimetableRow{
		{TeacherName: "  ayşe   yılmaz ", Schedule: map[string][]string{"pazartesi": {"9-A", "", "10-B"}}},
		{TeacherName: "AYŞE YILMAZ", Schedule: map[string][]string{"Salı": {"11-A"}}},
		{TeacherName: "mehmet kaya"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stored)
	assert.Equal(t, []string{"AYŞE YILMAZ"}, resp.Duplicates)

	require.Len(t, store.replaced, 2)
	assert.Equal(t, "AYŞE YILMAZ", store.replaced[0].TeacherName)
	assert.Equal(t, []string{"9-A", "", "10-B", "", "", "", "", ""}, store.replaced[0].Schedule["Pazartesi"])
	assert.Equal(t, "MEHMET KAYA", store.replaced[1].TeacherName)
}

func TestReplaceTimetablesRejectsUnknownDay(t *testing.T) {
	svc, store, _, _ := newTableService()

	_, err := svc.ReplaceTimetables(context.Background(), dto.ReplaceTimetablesRequest{Timetables: []dto.TimetableRow{
		{TeacherName: "AYŞE", Schedule: map[string][]string{"Cumartesi": {"9-A"}}},
	}})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Nil(t, store.replaced)
}

func TestReplaceTimetablesStoreFailure(t *testing.T) {
	svc, store, _, _ := newTableService()
	store.err = errors.New("db down")

	_, err := svc.ReplaceTimetables(context.Background(), dto.ReplaceTimetablesRequest{Timetables: []dto.TimetableRow{{TeacherName: "AYŞE"}}})
	assert.True(t, appErrors.Is(err, appErrors.ErrInternal))
}

func TestImportTimetableWorkbook(t *testing.T) {
	svc, store, _, _ := newTableService()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"HAFTALIK DERS PROGRAMI"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"ayşe yılmaz", "9-A", "BOŞ", "10-B"}))
	require.NoError(t, f.SetSheetRow(sheet, "A4", &[]interface{}{"AB"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	resp, err := svc.ImportTimetable(context.Background(), bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, resp.Stored)
	assert.Equal(t, 1, resp.Skipped)
	require.Len(t, store.replaced, 1)
	assert.Equal(t, "9-A", store.replaced[0].Schedule["Pazartesi"][0])
}

func TestImportTimetableRejectsGarbage(t *testing.T) {
	svc, _, _, _ := newTableService()
	_, err := svc.ImportTimetable(context.Background(), bytes.NewReader([]byte("not a workbook")))
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReplaceDuties(t *testing.T) {
	svc, _, duties, _ := newTableService()

	resp, err := svc.ReplaceDuties(context.Background(), dto.ReplaceDutiesRequest{Duties: []dto.DutyRow{
		{Day: "PAZARTESİ", Location: "Kantin", TeacherName: "ayşe"},
		{Day: "Pazartesi", Location: "Bahçe", TeacherName: "mehmet"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stored)
	assert.Equal(t, []string{"Bahçe", "Kantin"}, resp.Locations)
	assert.Equal(t, "Pazartesi", duties.replaced[0].Day)
	assert.Equal(t, "AYŞE", duties.replaced[0].TeacherName)

	resp, err = svc.ReplaceDuties(context.Background(), dto.ReplaceDutiesRequest{Duties: []dto.DutyRow{
		{Day: "Salı", Location: "Gate ", TeacherName: "ayşe"},
		{Day: "Salı", Location: " Gate", TeacherName: "mehmet"},
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Gate"}, resp.Locations)
	assert.Equal(t, "Gate", duties.replaced[0].Location)
	assert.Equal(t, "Gate", duties.replaced[1].Location)

	_, err = svc.ReplaceDuties(context.Background(), dto.ReplaceDutiesRequest{Duties: []dto.DutyRow{{Day: "Pazar", Location: "Kantin", TeacherName: "x"}}})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReplaceBaselineLastValueWins(t *testing.T) {
	svc, _, _, baseline := newTableService()

	resp, err := svc.ReplaceBaseline(context.Background(), dto.ReplaceBaselineRequest{Baseline: []dto.BaselineRow{
		{Name: "ayşe", SubstituteCount: 2},
		{Name: "mehmet", SubstituteCount: 1},
		{Name: "AYŞE", SubstituteCount: 5},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stored)
	assert.Equal(t, []models.BaselineCount{{Name: "AYŞE", SubstituteCount: 5}, {Name: "MEHMET", SubstituteCount: 1}}, baseline.replaced)

	_, err = svc.ReplaceBaseline(context.Background(), dto.ReplaceBaselineRequest{Baseline: []dto.BaselineRow{{Name: "x", SubstituteCount: -1}}})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestInputs(t *testing.T) {
	svc, store, duties, baseline := newTableService()
	store.rows = []models.TeacherTimetable{{TeacherName: "AYŞE", Schedule: models.WeeklySchedule{"Pazartesi": {"9-A"}}}}
	duties.rows = []models.DutyAssignment{{Day: "Pazartesi", Location: "Bahçe", TeacherName: "MEHMET"}}
	baseline.rows = []models.BaselineCount{{Name: "zeynep", SubstituteCount: 3}}

	in, err := svc.Inputs(context.Background())
	require.NoError(t, err)
	require.Len(t, in.Timetables, 1)
	assert.Equal(t, []string{"9-A"}, in.Timetables[0].Schedule["Pazartesi"])
	assert.Equal(t, "Bahçe", in.Duties[0].Location)
	assert.Equal(t, map[string]int{"ZEYNEP": 3}, in.Baseline)
	assert.Equal(t, []string{"ZEYNEP"}, in.Fallback)
}
