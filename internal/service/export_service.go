package service

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/timetable-api/internal/models"
	"github.com/noah-isme/timetable-api/pkg/export"
	"github.com/noah-isme/timetable-api/pkg/storage"
)

type timetableSnapshotter interface {
	Snapshot(ctx context.Context) ([]models.Lesson, *models.Catalog)
}

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	Delete(name string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ExportFormat
	ExpiresAt    time.Time
}

// ExportService renders timetable snapshots to files and signs download links for them.
type ExportService struct {
	timetable timetableSnapshotter
	storage   fileStorage
	renderers map[models.ExportFormat]datasetRenderer
	signer    *storage.SignedURLSigner
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(timetable timetableSnapshotter, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger, csv, pdf datasetRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter(',')
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		timetable: timetable,
		storage:   store,
		renderers: map[models.ExportFormat]datasetRenderer{models.ExportFormatCSV: csv, models.ExportFormatPDF: pdf},
		signer:    signer,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate renders the job's slice of the timetable, stores it and signs a download URL.
func (s *ExportService) Generate(ctx context.Context, job *models.ExportJob) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	renderer, ok := s.renderers[job.Params.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	lessons, catalog := s.timetable.Snapshot(ctx)
	payload, err := renderer.Render(BuildTimetableDataset(lessons, catalog, job.Params))
	if err != nil {
		return nil, err
	}

	relPath, err := s.storage.Save(s.buildFilename(job), payload)
	if err != nil {
		return nil, err
	}
	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}

	s.logger.Debug("export rendered", zap.String("job_id", job.ID), zap.String("path", relPath), zap.Int("bytes", len(payload)))
	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          prefix + "/exports/download?token=" + token,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
	}, nil
}

// ContentType returns the MIME type for the format.
func (s *ExportService) ContentType(format models.ExportFormat) string {
	if r, ok := s.renderers[format]; ok {
		return r.ContentType()
	}
	return "application/octet-stream"
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Parse(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored export file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl, or the configured ResultTTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ExportJob) string {
	scope := "all"
	switch {
	case job.Params.ProfessorID != nil:
		scope = "professor-" + strconv.Itoa(*job.Params.ProfessorID)
	case job.Params.ClassroomNumber != "":
		scope = "classroom-" + sanitizeFilename(job.Params.ClassroomNumber)
	}
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("timetable_%s_%s_%s.%s", scope, timestamp, shortID(job.ID), job.Params.Format)
}

var timetableHeaders = []string{"Day", "Time Slot", "Course", "Course Type", "Professor", "Department", "Classroom", "Lesson ID"}

// BuildTimetableDataset lays out lessons by day then slot. Lessons sharing a cell keep schedule order.
// Unknown course or professor ids are shown by number.
func BuildTimetableDataset(lessons []models.Lesson, catalog *models.Catalog, params models.ExportJobParams) export.Dataset {
	if catalog == nil {
		catalog = &models.Catalog{}
	}
	courses := make(map[int]models.Course, len(catalog.Courses))
	for i := len(catalog.Courses) - 1; i >= 0; i-- {
		courses[catalog.Courses[i].ID] = catalog.Courses[i]
	}
	professors := make(map[int]models.Professor, len(catalog.Professors))
	for i := len(catalog.Professors) - 1; i >= 0; i-- {
		professors[catalog.Professors[i].ID] = catalog.Professors[i]
	}

	selected := make([]models.Lesson, 0, len(lessons))
	for _, l := range lessons {
		if params.ProfessorID != nil && l.ProfessorID != *params.ProfessorID {
			continue
		}
		if params.ClassroomNumber != "" && l.ClassroomNumber != params.ClassroomNumber {
			continue
		}
		selected = append(selected, l)
	}
	sort.SliceStable(selected, func(i, j int) bool {
		di, dj := selected[i].DayOfWeek.Index(), selected[j].DayOfWeek.Index()
		if di != dj {
			return di < dj
		}
		return selected[i].TimeSlot.Index() < selected[j].TimeSlot.Index()
	})

	rows := make([][]string, 0, len(selected))
	for _, l := range selected {
		courseName, courseType := "#"+strconv.Itoa(l.CourseID), ""
		if c, ok := courses[l.CourseID]; ok {
			courseName, courseType = c.Name, string(c.Type)
		}
		professorName, department := "#"+strconv.Itoa(l.ProfessorID), ""
		if p, ok := professors[l.ProfessorID]; ok {
			professorName, department = p.Name, p.Department
		}
		rows = append(rows, []string{
			string(l.DayOfWeek), string(l.TimeSlot), courseName, courseType,
			professorName, department, l.ClassroomNumber, l.ID,
		})
	}

	title := "Weekly timetable"
	switch {
	case params.ProfessorID != nil:
		name := "#" + strconv.Itoa(*params.ProfessorID)
		if p, ok := professors[*params.ProfessorID]; ok {
			name = p.Name
		}
		title = "Weekly timetable: " + name
	case params.ClassroomNumber != "":
		title = "Weekly timetable: classroom " + params.ClassroomNumber
	}
	return export.Dataset{Title: title, Headers: timetableHeaders, Rows: rows}
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 64 {
		return result[:64]
	}
	return result
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
