package models

import "time"

// RequirementKind discriminates prerequisite requirement rows.
type RequirementKind string

const (
	// RequirementSubject requires a passing grade in a named subject.
	RequirementSubject RequirementKind = "SUBJECT"
	// RequirementYearStanding requires completion of all subjects below a
	// given year level in the preceding term.
	RequirementYearStanding RequirementKind = "YEAR_STANDING"
)

// PrerequisiteRequirement is one requirement row attached to a subject.
type PrerequisiteRequirement struct {
	ID           string          `db:"id" json:"id"`
	SubjectID    string          `db:"subject_id" json:"subject_id"`
	Kind         RequirementKind `db:"kind" json:"kind"`
	RequiredCode string          `db:"required_code" json:"required_code,omitempty"`
	YearLevel    int             `db:"year_level" json:"year_level,omitempty"`
}

// Subject represents one catalog offering (code + section) for a term.
// Catalog rows are immutable within a term; edits happen through catalog
// maintenance outside this engine.
type Subject struct {
	ID            string                    `db:"id" json:"id"`
	Code          string                    `db:"code" json:"code"`
	Section       string                    `db:"section" json:"section"`
	Description   string                    `db:"description" json:"description"`
	Units         int                       `db:"units" json:"units"`
	LectureHours  int                       `db:"lecture_hours" json:"lecture_hours"`
	LabHours      int                       `db:"lab_hours" json:"lab_hours"`
	YearLevel     int                       `db:"year_level" json:"year_level"`
	Term          Term                      `db:"term" json:"term"`
	ProgramID     string                    `db:"program_id" json:"program_id"`
	Prerequisites []PrerequisiteRequirement `db:"-" json:"prerequisites,omitempty"`
	CreatedAt     time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time                 `db:"updated_at" json:"updated_at"`
}

// SubjectFilter captures supported filters for listing the catalog.
type SubjectFilter struct {
	Term      Term
	YearLevel int
	ProgramID string
	Search    string
	Page      int
	PageSize  int
}
