package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/service"
	"github.com/Hasan197668/nis/internal/substitution"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
)

type planningServiceMock struct {
	view       *dto.SessionView
	err        error
	lastID     string
	openReq    dto.OpenSessionRequest
	cellReq    dto.SetCellRequest
	query      dto.CandidateQuery
	format     string
	candidates []dto.CandidateView
	commit     *dto.CommitResponse
	text       string
	export     *service.ExportFile
}

func (m *planningServiceMock) Open(ctx context.Context, req dto.OpenSessionRequest) (*dto.SessionView, error) {
	m.openReq = req
	return m.view, m.err
}

func (m *planningServiceMock) Get(ctx context.Context, id string) (*dto.SessionView, error) {
	m.lastID = id
	return m.view, m.err
}

func (m *planningServiceMock) SetDay(ctx context.Context, id string, req dto.SetDayRequest) (*dto.SessionView, error) {
	m.lastID = id
	return m.view, m.err
}

func (m *planningServiceMock) SetWeekOffset(ctx context.Context, id string, req dto.SetWeekRequest) (*dto.SessionView, error) {
	m.lastID = id
	return m.view, m.err
}

func (m *planningServiceMock) ToggleAbsence(ctx context.Context, id string, req dto.TeacherRequest) (*dto.SessionView, error) {
	m.lastID = id
	return m.view, m.err
}

func (m *planningServiceMock) SetReason(ctx context.Context, id string, req dto.SetReasonRequest) (*dto.SessionView, error) {
	return m.view, m.err
}

func (m *planningServiceMock) ToggleDuty(ctx context.Context, id string, req dto.TeacherRequest) (*dto.SessionView, error) {
	return m.view, m.err
}

func (m *planningServiceMock) Execute(ctx context.Context, id string) (*dto.SessionView, error) {
	m.lastID = id
	return m.view, m.err
}

func (m *planningServiceMock) SetCell(ctx context.Context, id string, req dto.SetCellRequest) (*dto.SessionView, error) {
	m.cellReq = req
	return m.view, m.err
}

func (m *planningServiceMock) Candidates(ctx context.Context, id string, query dto.CandidateQuery) ([]dto.CandidateView, error) {
	m.query = query
	return m.candidates, m.err
}

func (m *planningServiceMock) Commit(ctx context.Context, id string) (*dto.CommitResponse, error) {
	return m.commit, m.err
}

func (m *planningServiceMock) ShareText(ctx context.Context, id string) (string, error) {
	return m.text, m.err
}

func (m *planningServiceMock) Share(ctx context.Context, id string) (*dto.ShareResponse, error) {
	return &dto.ShareResponse{JobID: "job-1", Text: m.text}, m.err
}

func (m *planningServiceMock) Export(ctx context.Context, id, format string) (*service.ExportFile, error) {
	m.format = format
	return m.export, m.err
}

func TestSessionHandlerOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{view: &dto.SessionView{ID: "s1", Day: substitution.Tuesday}}
	handler := NewSessionHandler(mock)

	c, w := newGinContext(http.MethodPost, "/sessions", []byte(`{"day":"Salı","weekOffset":1}`))
	handler.Open(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, dto.OpenSessionRequest{Day: "Salı", WeekOffset: 1}, mock.openReq)
	var body struct {
		Data dto.SessionView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "s1", body.Data.ID)

	c, w = newGinContext(http.MethodPost, "/sessions", nil)
	handler.Open(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = newGinContext(http.MethodPost, "/sessions", []byte(`{"day":`))
	handler.Open(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{err: appErrors.ErrSessionNotFound}
	handler := NewSessionHandler(mock)

	c, w := newGinContext(http.MethodGet, "/sessions/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "missing", mock.lastID)
	assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
}

func TestSessionHandlerMutations(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{view: &dto.SessionView{ID: "s1"}}
	handler := NewSessionHandler(mock)

	cases := []struct {
		name   string
		method string
		body   string
		call   gin.HandlerFunc
	}{
		{"day", http.MethodPut, `{"day":"Cuma"}`, handler.SetDay},
		{"week", http.MethodPut, `{"weekOffset":-1}`, handler.SetWeek},
		{"absence", http.MethodPost, `{"teacherId":"AYŞE"}`, handler.ToggleAbsence},
		{"reason", http.MethodPut, `{"teacherId":"AYŞE","reason":"Raporlu"}`, handler.SetReason},
		{"duty", http.MethodPost, `{"teacherId":"MEHMET"}`, handler.ToggleDuty},
		{"execute", http.MethodPost, ``, handler.Execute},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newGinContext(tc.method, "/sessions/s1", []byte(tc.body))
			c.Params = gin.Params{{Key: "id", Value: "s1"}}
			tc.call(c)
			assert.Equal(t, http.StatusOK, w.Code)
		})
	}

	c, w := newGinContext(http.MethodPut, "/sessions/s1/day", []byte(`not json`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.SetDay(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerSetCellNullSubstitute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{view: &dto.SessionView{ID: "s1"}}
	handler := NewSessionHandler(mock)

	c, w := newGinContext(http.MethodPut, "/sessions/s1/plan/cells", []byte(`{"hourId":"3","absentId":"AYŞE","substituteId":null}`))
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.SetCell(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3", mock.cellReq.HourID)
	assert.Nil(t, mock.cellReq.SubstituteID)

	mock.err = appErrors.ErrPlanNotExecuted
	c, w = newGinContext(http.MethodPut, "/sessions/s1/plan/cells", []byte(`{"hourId":"3","absentId":"AYŞE","substituteId":"ZEYNEP"}`))
	handler.SetCell(c)
	assert.Equal(t, http.StatusConflict, w.Code)
	require.NotNil(t, mock.cellReq.SubstituteID)
	assert.Equal(t, "ZEYNEP", *mock.cellReq.SubstituteID)
}

func TestSessionHandlerCandidates(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{candidates: []dto.CandidateView{{ID: "MEHMET", Status: substitution.ConflictFree}}}
	handler := NewSessionHandler(mock)

	c, w := newGinContext(http.MethodGet, "/sessions/s1/plan/candidates?hourId=3&absentId=AY%C5%9EE&q=meh", nil)
	c.Params = gin.Params{{Key: "id", Value: "s1"}}
	handler.Candidates(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.CandidateQuery{HourID: "3", AbsentID: "AYŞE", Search: "meh"}, mock.query)
	assert.Contains(t, w.Body.String(), `"status":"FREE"`)
}

func TestSessionHandlerCommitAndShare(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{commit: &dto.CommitResponse{CommitID: "1728896400000"}, text: "📢 plan"}
	handler := NewSessionHandler(mock)

	c, w := newGinContext(http.MethodPost, "/sessions/s1/commit", nil)
	handler.Commit(c)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), "1728896400000")

	c, w = newGinContext(http.MethodGet, "/sessions/s1/share-text", nil)
	handler.ShareText(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "📢 plan")

	c, w = newGinContext(http.MethodPost, "/sessions/s1/share", nil)
	handler.Share(c)
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "job-1")

	mock.err = appErrors.Clone(appErrors.ErrUnavailable, "channel sharing is disabled")
	c, w = newGinContext(http.MethodPost, "/sessions/s1/share", nil)
	handler.Share(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSessionHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &planningServiceMock{export: &service.ExportFile{Content: []byte("a;b\n"), ContentType: "text/csv; charset=utf-8", Filename: "ders-doldurma-2024-10-14.csv"}}
	handler := NewSessionHandler(mock)

	c, w := newGinContext(http.MethodGet, "/sessions/s1/export", nil)
	handler.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.FormatCSV, mock.format)
	assert.Equal(t, "a;b\n", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "ders-doldurma-2024-10-14.csv")

	c, _ = newGinContext(http.MethodGet, "/sessions/s1/export?format=pdf", nil)
	handler.Export(c)
	assert.Equal(t, service.FormatPDF, mock.format)
}
