package csvio

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/noah-isme/timetable-api/internal/models"
)

// File names expected inside the catalog directory.
const (
	ProfessorsFile = "professors.csv"
	ClassroomsFile = "classrooms.csv"
	CoursesFile    = "courses.csv"
)

// Loader reads catalog CSV files with a configurable delimiter.
type Loader struct {
	dir   string
	delim rune
}

// NewLoader returns a loader for dir. A zero delim means ','.
func NewLoader(dir string, delim rune) *Loader {
	if delim == 0 {
		delim = ','
	}
	return &Loader{dir: dir, delim: delim}
}

// Load reads all three files. A missing file yields an empty list; a malformed one fails the load.
func (l *Loader) Load() (*models.Catalog, error) {
	catalog := &models.Catalog{}
	if err := l.readFile(ProfessorsFile, &catalog.Professors); err != nil {
		return nil, err
	}
	if err := l.readFile(ClassroomsFile, &catalog.Classrooms); err != nil {
		return nil, err
	}
	if err := l.readFile(CoursesFile, &catalog.Courses); err != nil {
		return nil, err
	}
	for i, c := range catalog.Courses {
		ct, ok := models.ParseCourseType(string(c.Type))
		if !ok {
			return nil, fmt.Errorf("%s row %d: unknown course type %q", CoursesFile, i+2, c.Type)
		}
		catalog.Courses[i].Type = ct
	}
	return catalog, nil
}

// ReadProfessors decodes professors from r.
func (l *Loader) ReadProfessors(r io.Reader) ([]models.Professor, error) {
	var out []models.Professor
	if err := l.decode(r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadClassrooms decodes classrooms from r.
func (l *Loader) ReadClassrooms(r io.Reader) ([]models.Classroom, error) {
	var out []models.Classroom
	if err := l.decode(r, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Loader) readFile(name string, out interface{}) error {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close() //nolint:errcheck

	if err := l.decode(f, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// decode builds a private reader per call; gocsv.SetCSVReader is process-global.
func (l *Loader) decode(r io.Reader, out interface{}) error {
	reader := csv.NewReader(r)
	reader.Comma = l.delim
	reader.TrimLeadingSpace = true
	if err := gocsv.UnmarshalCSV(reader, out); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil
		}
		return err
	}
	return nil
}
