package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetable-api/internal/models"
)

// CatalogRepository reads timetable reference data from Postgres. It never writes.
type CatalogRepository struct {
	db *sqlx.DB
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProfessors returns professors ordered by id.
func (r *CatalogRepository) ListProfessors(ctx context.Context) ([]models.Professor, error) {
	const query = `SELECT id, name, department FROM professors ORDER BY id ASC`
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

// ListClassrooms returns classrooms ordered by number.
func (r *CatalogRepository) ListClassrooms(ctx context.Context) ([]models.Classroom, error) {
	const query = `SELECT number, capacity, has_projector FROM classrooms ORDER BY number ASC`
	var classrooms []models.Classroom
	if err := r.db.SelectContext(ctx, &classrooms, query); err != nil {
		return nil, fmt.Errorf("list classrooms: %w", err)
	}
	return classrooms, nil
}

// ListCourses returns courses ordered by id.
func (r *CatalogRepository) ListCourses(ctx context.Context) ([]models.Course, error) {
	const query = `SELECT id, name, type FROM courses ORDER BY id ASC`
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// Load reads the whole catalog.
func (r *CatalogRepository) Load(ctx context.Context) (*models.Catalog, error) {
	professors, err := r.ListProfessors(ctx)
	if err != nil {
		return nil, err
	}
	classrooms, err := r.ListClassrooms(ctx)
	if err != nil {
		return nil, err
	}
	courses, err := r.ListCourses(ctx)
	if err != nil {
		return nil, err
	}
	return &models.Catalog{Professors: professors, Classrooms: classrooms, Courses: courses}, nil
}
