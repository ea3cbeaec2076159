package models

import "time"

// ExportFormat enumerates supported export formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportStatus captures background job lifecycle states.
type ExportStatus string

const (
	ExportStatusQueued     ExportStatus = "QUEUED"
	ExportStatusProcessing ExportStatus = "PROCESSING"
	ExportStatusFinished   ExportStatus = "FINISHED"
	ExportStatusFailed     ExportStatus = "FAILED"
)

// ExportJob is an in-memory record of a timetable export.
type ExportJob struct {
	ID           string          `json:"id"`
	Params       ExportJobParams `json:"params"`
	Status       ExportStatus    `json:"status"`
	Progress     int             `json:"progress"`
	ResultPath   string          `json:"-"`
	ResultURL    *string         `json:"resultUrl,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	FinishedAt   *time.Time      `json:"finishedAt,omitempty"`
	ErrorMessage *string         `json:"errorMessage,omitempty"`
}

// ExportJobParams scopes what an export contains.
type ExportJobParams struct {
	Format          ExportFormat `json:"format"`
	ProfessorID     *int         `json:"professorId,omitempty"`
	ClassroomNumber string       `json:"classroomNumber,omitempty"`
}

// Finished reports whether the job reached a terminal state.
func (j *ExportJob) Finished() bool {
	return j.Status == ExportStatusFinished || j.Status == ExportStatusFailed
}
