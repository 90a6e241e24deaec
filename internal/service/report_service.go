package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/Hasan197668/nis/internal/dto"
	"github.com/Hasan197668/nis/internal/substitution"
	"github.com/Hasan197668/nis/pkg/config"
	appErrors "github.com/Hasan197668/nis/pkg/errors"
	"github.com/Hasan197668/nis/pkg/export"
	"github.com/Hasan197668/nis/pkg/jobs"
	"github.com/Hasan197668/nis/pkg/notify"
	"github.com/Hasan197668/nis/pkg/storage"
)

// Background job types handled by ReportService.HandleJob.
const (
	JobArchiveSheet = "archive_sheet"
	JobShareText    = "share_text"
)

// Export formats.
const (
	FormatCSV = "csv"
	FormatPDF = "pdf"
)

type archiveStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Exists(filename string) (bool, error)
	CleanupOlderThan(now time.Time, ttl time.Duration) ([]string, error)
}

type tokenSigner interface {
	Generate(ref, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (storage.Claims, error)
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) (string, error)
}

type archivePayload struct {
	Filename string
	Document export.Document
}

type sharePayload struct {
	Text string
}

// ReportServiceConfig governs archive retention and download links.
type ReportServiceConfig struct {
	Retention    time.Duration
	DownloadPath string
}

// ExportFile is a rendered daily sheet.
type ExportFile struct {
	Content     []byte
	ContentType string
	Filename    string
}

// ReportDownload is an opened archived sheet.
type ReportDownload struct {
	File      *os.File
	Filename  string
	ExpiresAt time.Time
}

// ReportService renders daily sheets, archives them in the report store and
// shares plans to the staff channel. Archiving and sharing run on the job queue.
type ReportService struct {
	storage  archiveStorage
	signer   tokenSigner
	queue    jobDispatcher
	notifier notify.Notifier
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	school   config.SchoolConfig
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      ReportServiceConfig
}

// NewReportService constructs the report service.
func NewReportService(store archiveStorage, signer tokenSigner, queue jobDispatcher, notifier notify.Notifier, school config.SchoolConfig, metrics *MetricsService, logger *zap.Logger, cfg ReportServiceConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 90 * 24 * time.Hour
	}
	if cfg.DownloadPath == "" {
		cfg.DownloadPath = "/api/v1/reports/download"
	}
	return &ReportService{
		storage:  store,
		signer:   signer,
		queue:    queue,
		notifier: notifier,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		school:   school,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// SetQueue attaches the dispatcher once the queue, whose handler is this
// service, has been built.
func (s *ReportService) SetQueue(queue jobDispatcher) {
	s.queue = queue
}

// ShareText renders the chat message for sheet.
func (s *ReportService) ShareText(sheet DailySheet) string {
	return ShareText(s.school.MessagePrefix, sheet)
}

// Render produces the daily sheet in the requested format.
func (s *ReportService) Render(format string, sheet DailySheet) (*ExportFile, error) {
	doc := SheetDocument(s.school, sheet)
	base := fmt.Sprintf("ders-doldurma-%s", sheet.Date.Format(substitution.RecordDateLayout))
	switch format {
	case "", FormatCSV:
		content, err := s.csv.Render(doc.Data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, ContentType: "text/csv; charset=utf-8", Filename: base + ".csv"}, nil
	case FormatPDF:
		content, err := s.pdf.Render(doc)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, ContentType: "application/pdf", Filename: base + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

// Archive queues the PDF sheet of a commit for storage and returns a signed
// link that resolves once the job has run.
func (s *ReportService) Archive(ctx context.Context, commitID string, sheet DailySheet) (*dto.ReportLink, error) {
	if s.queue == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "report archive is not configured")
	}
	filename := path.Join("sheets", sheet.Date.Format(substitution.RecordDateLayout), commitID+".pdf")
	token, expiresAt, err := s.signer.Generate(commitID, filename)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign report link")
	}
	job := jobs.Job{
		Type:    JobArchiveSheet,
		Payload: archivePayload{Filename: filename, Document: SheetDocument(s.school, sheet)},
	}
	if _, err := s.queue.Enqueue(job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue report archive")
	}
	s.logger.Info("report archive queued", zap.String("commit_id", commitID), zap.String("file", filename))
	return &dto.ReportLink{
		Token:     token,
		URL:       s.cfg.DownloadPath + "?token=" + url.QueryEscape(token),
		ExpiresAt: expiresAt,
	}, nil
}

// Share queues text for posting to the staff channel.
func (s *ReportService) Share(ctx context.Context, text string) (string, error) {
	if !s.notifier.Enabled() {
		return "", appErrors.Clone(appErrors.ErrUnavailable, "channel sharing is disabled")
	}
	if s.queue == nil {
		return "", appErrors.Clone(appErrors.ErrUnavailable, "job queue is not configured")
	}
	id, err := s.queue.Enqueue(jobs.Job{Type: JobShareText, Payload: sharePayload{Text: text}})
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to queue share")
	}
	return id, nil
}

// HandleJob runs a queued archive or share job.
func (s *ReportService) HandleJob(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case JobArchiveSheet:
		payload, ok := job.Payload.(archivePayload)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		content, err := s.pdf.Render(payload.Document)
		if err != nil {
			return err
		}
		if _, err := s.storage.Save(payload.Filename, content); err != nil {
			return fmt.Errorf("store %s: %w", payload.Filename, err)
		}
		return nil
	case JobShareText:
		payload, ok := job.Payload.(sharePayload)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		return s.notifier.Post(ctx, payload.Text)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

// OnJobResult records the final outcome of a job.
func (s *ReportService) OnJobResult(job jobs.Job, err error) {
	s.metrics.ObserveJob(job.Type, err)
	if err != nil {
		s.logger.Sugar().Errorw("report job failed", "job_id", job.ID, "type", job.Type, "attempts", job.Attempt, "error", err)
		return
	}
	s.logger.Sugar().Debugw("report job finished", "job_id", job.ID, "type", job.Type)
}

// ResolveDownload validates token and opens the archived sheet.
func (s *ReportService) ResolveDownload(token string) (*ReportDownload, error) {
	if s.signer == nil || s.storage == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "report archive is not configured")
	}
	claims, err := s.signer.Parse(token, false)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "download token expired")
		}
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid download token")
	}
	exists, err := s.storage.Exists(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up report")
	}
	if !exists {
		return nil, appErrors.ErrReportNotReady
	}
	file, err := s.storage.Open(claims.Path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report")
	}
	return &ReportDownload{File: file, Filename: path.Base(claims.Path), ExpiresAt: claims.ExpiresAt}, nil
}

// Cleanup removes archived sheets older than the retention period.
func (s *ReportService) Cleanup(now time.Time) (int, error) {
	if s.storage == nil {
		return 0, nil
	}
	removed, err := s.storage.CleanupOlderThan(now, s.cfg.Retention)
	if err != nil {
		return len(removed), fmt.Errorf("cleanup report archive: %w", err)
	}
	if len(removed) > 0 {
		s.logger.Info("expired reports removed", zap.Int("count", len(removed)))
	}
	return len(removed), nil
}
