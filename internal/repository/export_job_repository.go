package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ErrExportJobNotFound is returned when a job id is unknown.
var ErrExportJobNotFound = errors.New("export job not found")

// ExportJobRepository keeps export job metadata in memory for the process lifetime.
type ExportJobRepository struct {
	mu   sync.RWMutex
	jobs map[string]*models.ExportJob
}

// NewExportJobRepository constructs the repository.
func NewExportJobRepository() *ExportJobRepository {
	return &ExportJobRepository{jobs: make(map[string]*models.ExportJob)}
}

// Create stores a new job with generated defaults.
func (r *ExportJobRepository) Create(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.ExportStatusQueued
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	cp := *job
	r.mu.Lock()
	r.jobs[job.ID] = &cp
	r.mu.Unlock()
	return nil
}

// GetByID returns a copy of the job.
func (r *ExportJobRepository) GetByID(ctx context.Context, id string) (*models.ExportJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return nil, ErrExportJobNotFound
	}
	cp := *job
	return &cp, nil
}

// UpdateExportJobParams defines the mutable fields.
type UpdateExportJobParams struct {
	Status       *models.ExportStatus
	Progress     *int
	ResultPath   *string
	ResultURL    *string
	ErrorMessage *string
	FinishedAt   *time.Time
}

// Update applies the non-nil fields to the job.
func (r *ExportJobRepository) Update(ctx context.Context, id string, params UpdateExportJobParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return ErrExportJobNotFound
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.ResultPath != nil {
		job.ResultPath = *params.ResultPath
	}
	if params.ResultURL != nil {
		url := *params.ResultURL
		job.ResultURL = &url
	}
	if params.ErrorMessage != nil {
		msg := *params.ErrorMessage
		job.ErrorMessage = &msg
	}
	if params.FinishedAt != nil {
		finished := *params.FinishedAt
		job.FinishedAt = &finished
	}
	return nil
}

// ListFinishedBefore returns terminal jobs finished before cutoff, oldest first.
func (r *ExportJobRepository) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ExportJob, error) {
	r.mu.RLock()
	result := make([]models.ExportJob, 0)
	for _, job := range r.jobs {
		if job.Finished() && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			result = append(result, *job)
		}
	}
	r.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].FinishedAt.Before(*result[j].FinishedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Delete forgets a job.
func (r *ExportJobRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	delete(r.jobs, id)
	r.mu.Unlock()
	return nil
}
