package models

// Professor teaches lessons. Ids are caller-assigned and not checked for uniqueness.
type Professor struct {
	ID         int    `db:"id" csv:"id" json:"id"`
	Name       string `db:"name" csv:"name" json:"name"`
	Department string `db:"department" csv:"department" json:"department"`
}

// Classroom is a bookable room identified by its number.
type Classroom struct {
	Number       string `db:"number" csv:"number" json:"number"`
	Capacity     int    `db:"capacity" csv:"capacity" json:"capacity"`
	HasProjector bool   `db:"has_projector" csv:"has_projector" json:"hasProjector"`
}

// Course is a unit of teaching of a given type.
type Course struct {
	ID   int        `db:"id" csv:"id" json:"id"`
	Name string     `db:"name" csv:"name" json:"name"`
	Type CourseType `db:"type" csv:"type" json:"type"`
}

// Catalog bundles reference data used to seed the registry.
type Catalog struct {
	Professors []Professor `json:"professors"`
	Classrooms []Classroom `json:"classrooms"`
	Courses    []Course    `json:"courses"`
}
