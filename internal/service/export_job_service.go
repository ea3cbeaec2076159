package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/internal/repository"
	appErrors "github.com/noah-isme/timetable-api/pkg/errors"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
)

const exportJobType = "timetable_export"

type exportJobStore interface {
	Create(ctx context.Context, job *models.ExportJob) error
	GetByID(ctx context.Context, id string) (*models.ExportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateExportJobParams) error
	ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type exportGenerator interface {
	Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error)
}

// CreateExportRequest describes an export to render in the background.
type CreateExportRequest struct {
	Format          string `json:"format" validate:"required,oneof=csv pdf"`
	ProfessorID     *int   `json:"professorId,omitempty"`
	ClassroomNumber string `json:"classroomNumber,omitempty"`
}

// ExportDownload aggregates resolved download data.
type ExportDownload struct {
	File        *os.File
	Filename    string
	ContentType string
	ExpiresAt   time.Time
}

// ExportJobServiceConfig governs cleanup.
type ExportJobServiceConfig struct {
	ResultTTL       time.Duration
	CleanupInterval time.Duration
}

// ExportJobService manages the export job lifecycle: QUEUED, PROCESSING, then FINISHED or FAILED.
type ExportJobService struct {
	repo      exportJobStore
	queue     jobDispatcher
	exporter  *ExportService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportJobServiceConfig
}

// NewExportJobService constructs the export job service.
func NewExportJobService(repo exportJobStore, queue jobDispatcher, exporter *ExportService, validate *validator.Validate, logger *zap.Logger, cfg ExportJobServiceConfig) *ExportJobService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportJobService{
		repo:      repo,
		queue:     queue,
		exporter:  exporter,
		validator: newValidator(validate),
		logger:    logger,
		cfg:       cfg,
	}
}

// CreateJob validates the request, stores a QUEUED job and hands it to the worker queue.
func (s *ExportJobService) CreateJob(ctx context.Context, req CreateExportRequest) (*models.ExportJob, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrValidation, "invalid export payload")
	}
	if req.ProfessorID != nil && req.ClassroomNumber != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "professorId and classroomNumber are mutually exclusive")
	}
	job := &models.ExportJob{
		Params: models.ExportJobParams{
			Format:          models.ExportFormat(req.Format),
			ProfessorID:     req.ProfessorID,
			ClassroomNumber: req.ClassroomNumber,
		},
		Status: models.ExportStatusQueued,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to create export job")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: exportJobType}); err != nil {
		failed := models.ExportStatusFailed
		msg := "failed to enqueue job"
		now := time.Now().UTC()
		progress := 100
		_ = s.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
			Status:       &failed,
			Progress:     &progress,
			ErrorMessage: &msg,
			FinishedAt:   &now,
		})
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to enqueue export job")
	}
	logger.WithRequestID(ctx, s.logger).Info("export job queued", zap.String("job_id", job.ID), zap.String("format", req.Format))
	return job, nil
}

// GetStatus returns job metadata.
func (s *ExportJobService) GetStatus(ctx context.Context, id string) (*models.ExportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.lookupError(err)
	}
	return job, nil
}

// ResolveDownload validates the token and opens the stored export file.
func (s *ExportJobService) ResolveDownload(ctx context.Context, token string) (*ExportDownload, error) {
	jobID, relPath, expiresAt, err := s.exporter.ParseToken(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		return nil, s.lookupError(err)
	}
	if job.ResultURL == nil || !strings.HasSuffix(*job.ResultURL, token) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "token mismatch")
	}
	if job.Status != models.ExportStatusFinished {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "export not ready")
	}
	file, err := s.exporter.Open(relPath)
	if err != nil {
		return nil, appErrors.WrapAs(err, appErrors.ErrInternal, "failed to open export file")
	}
	return &ExportDownload{
		File:        file,
		Filename:    filepath.Base(relPath),
		ContentType: s.exporter.ContentType(job.Params.Format),
		ExpiresAt:   expiresAt,
	}, nil
}

// StartCleanup boots a goroutine that purges expired exports periodically.
func (s *ExportJobService) StartCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CleanupExpired(ctx)
			}
		}
	}()
}

// CleanupExpired drops jobs finished more than ResultTTL ago along with their files.
func (s *ExportJobService) CleanupExpired(ctx context.Context) {
	cutoff := time.Now().Add(-s.cfg.ResultTTL)
	removed := 0
	for {
		expired, err := s.repo.ListFinishedBefore(ctx, cutoff, 100)
		if err != nil {
			s.logger.Warn("cleanup list failed", zap.Error(err))
			return
		}
		for _, job := range expired {
			if job.ResultPath != "" {
				if err := s.exporter.Delete(job.ResultPath); err != nil {
					s.logger.Warn("cleanup delete failed", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
			if err := s.repo.Delete(ctx, job.ID); err != nil {
				s.logger.Warn("cleanup forget job failed", zap.String("job_id", job.ID), zap.Error(err))
				return
			}
			removed++
		}
		if len(expired) < 100 {
			break
		}
	}
	orphans, err := s.exporter.Cleanup(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("filesystem cleanup failed", zap.Error(err))
	}
	if removed > 0 || len(orphans) > 0 {
		s.logger.Info("expired exports removed", zap.Int("jobs", removed), zap.Int("files", len(orphans)))
	}
}

func (s *ExportJobService) lookupError(err error) error {
	if errors.Is(err, repository.ErrExportJobNotFound) {
		return appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return appErrors.WrapAs(err, appErrors.ErrInternal, "failed to load export job")
}

// ExportWorker bridges queue jobs to ExportService.
type ExportWorker struct {
	repo       exportJobStore
	exporter   exportGenerator
	metrics    *MetricsService
	logger     *zap.Logger
	maxRetries int
}

// NewExportWorker constructs a worker. maxRetries must match the queue's setting.
func NewExportWorker(repo exportJobStore, exporter exportGenerator, metrics *MetricsService, maxRetries int, logger *zap.Logger) *ExportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &ExportWorker{repo: repo, exporter: exporter, metrics: metrics, logger: logger, maxRetries: maxRetries}
}

// Handle processes a queue job. Failures before the final attempt put the job back to QUEUED.
func (w *ExportWorker) Handle(ctx context.Context, job jobs.Job) error {
	record, err := w.repo.GetByID(ctx, job.ID)
	if err != nil {
		return err
	}
	processing := models.ExportStatusProcessing
	progress := 10
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{Status: &processing, Progress: &progress}); err != nil {
		return err
	}

	result, err := w.exporter.Generate(ctx, record)
	if err != nil {
		msg := err.Error()
		if job.Attempt >= w.maxRetries {
			failed := models.ExportStatusFailed
			progress = 100
			now := time.Now().UTC()
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &failed,
				Progress:     &progress,
				ErrorMessage: &msg,
				FinishedAt:   &now,
			}); updateErr != nil {
				w.logger.Warn("failed to mark job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
			w.metrics.RecordExport(record.Params.Format, models.ExportStatusFailed)
		} else {
			queued := models.ExportStatusQueued
			reset := 0
			if updateErr := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
				Status:       &queued,
				Progress:     &reset,
				ErrorMessage: &msg,
			}); updateErr != nil {
				w.logger.Warn("failed to mark job queued", zap.String("job_id", job.ID), zap.Error(updateErr))
			}
		}
		return err
	}

	finished := models.ExportStatusFinished
	progress = 100
	now := time.Now().UTC()
	noError := ""
	if err := w.repo.Update(ctx, job.ID, repository.UpdateExportJobParams{
		Status:       &finished,
		Progress:     &progress,
		ResultPath:   &result.RelativePath,
		ResultURL:    &result.URL,
		ErrorMessage: &noError,
		FinishedAt:   &now,
	}); err != nil {
		w.logger.Warn("failed to mark job finished", zap.String("job_id", job.ID), zap.Error(err))
		return err
	}
	w.metrics.RecordExport(record.Params.Format, models.ExportStatusFinished)
	return nil
}
