package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hasan197668/nis/pkg/config"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/jobs"
	"github.com/Hasan197668/nis/pkg/storage"
)

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	job.ID = "job-" + job.Type
	q.jobs = append(q.jobs, job)
	return job.ID, nil
}

type notifierStub struct {
	enabled bool
	posted  []string
	err     error
}

func (n *notifierStub) Post(ctx context.Context, text string) error {
	n.posted = append(n.posted, text)
	return n.err
}

func (n *notifierStub) Enabled() bool { return n.enabled }

type reportFixture struct {
	svc      *ReportService
	store    *storage.LocalStorage
	queue    *queueStub
	notifier *notifierStub
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	queue := &queueStub{}
	notifier := &notifierStub{enabled: true}
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	school := config.SchoolConfig{Name: "Atatürk Lisesi", MessagePrefix: "NÖBETÇİ", AcademicYear: "2024-2025"}
	svc := NewReportService(store, signer, queue, notifier, school, nil, nil, ReportServiceConfig{})
	return &reportFixture{svc: svc, store: store, queue: queue, notifier: notifier}
}

func TestReportRender(t *testing.T) {
	f := newReportFixture(t)

	file, err := f.svc.Render("", sampleSheet())
	require.NoError(t, err)
	assert.Equal(t, "ders-doldurma-2024-10-14.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	assert.Contains(t, string(file.Content), "Yerine Giren")
	assert.Contains(t, string(file.Content), "MEHMET KAYA")

	pdf, err := f.svc.Render(FormatPDF, sampleSheet())
	require.NoError(t, err)
	assert.Equal(t, "ders-doldurma-2024-10-14.pdf", pdf.Filename)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF")))

	_, err = f.svc.Render("xlsx", sampleSheet())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportArchiveAndDownload(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	link, err := f.svc.Archive(ctx, "1728896400000", sampleSheet())
	require.NoError(t, err)
	assert.Contains(t, link.URL, "/api/v1/reports/download?token=")
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, JobArchiveSheet, f.queue.jobs[0].Type)

	_, err = f.svc.ResolveDownload(link.Token)
	assert.True(t, appErrors.Is(err, appErrors.ErrReportNotReady))

	require.NoError(t, f.svc.HandleJob(ctx, f.queue.jobs[0]))
	exists, err := f.store.Exists("sheets/2024-10-14/1728896400000.pdf")
	require.NoError(t, err)
	assert.True(t, exists)

	download, err := f.svc.ResolveDownload(link.Token)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, "1728896400000.pdf", download.Filename)
	content, err := io.ReadAll(download.File)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(content, []byte("%PDF")))

	_, err = f.svc.ResolveDownload("garbage")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestReportArchiveQueueFull(t *testing.T) {
	f := newReportFixture(t)
	f.queue.err = errors.New("queue full")

	_, err := f.svc.Archive(context.Background(), "1", sampleSheet())
	assert.True(t, appErrors.Is(err, appErrors.ErrUnavailable))
}

func TestReportShare(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	id, err := f.svc.Share(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "job-"+JobShareText, id)
	require.NoError(t, f.svc.HandleJob(ctx, f.queue.jobs[0]))
	assert.Equal(t, []string{"hello"}, f.notifier.posted)

	f.notifier.enabled = false
	_, err = f.svc.Share(ctx, "again")
	assert.True(t, appErrors.Is(err, appErrors.ErrUnavailable))
}

func TestReportHandleJobRejectsUnknown(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	assert.Error(t, f.svc.HandleJob(ctx, jobs.Job{ID: "x", Type: "mystery"}))
	assert.Error(t, f.svc.HandleJob(ctx, jobs.Job{ID: "y", Type: JobShareText, Payload: 42}))
}

func TestReportCleanup(t *testing.T) {
	f := newReportFixture(t)
	_, err := f.store.Save("sheets/2024-01-01/old.pdf", []byte("%PDF"))
	require.NoError(t, err)

	removed, err := f.svc.Cleanup(time.Now().Add(365 * 24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	removed, err = f.svc.Cleanup(time.Now())
	require.NoError(t, err)
	assert.Zero(t, removed)
}
