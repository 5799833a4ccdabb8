package models

import "time"

// EnrollmentStatus is the stage of the per-term enrollment workflow. The
// stored representation keeps the legacy 0-3 codes; transitions are only
// legal when enumerated in the transition table below.
type EnrollmentStatus int

const (
	StatusNotCleared EnrollmentStatus = iota
	StatusCleared
	StatusSubmitted
	StatusConfirmed
)

// String implements fmt.Stringer.
func (s EnrollmentStatus) String() string {
	switch s {
	case StatusNotCleared:
		return "NOT_CLEARED"
	case StatusCleared:
		return "CLEARED"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusConfirmed:
		return "CONFIRMED"
	}
	return "UNKNOWN"
}

// Valid reports whether the value is one of the defined stages.
func (s EnrollmentStatus) Valid() bool {
	return s >= StatusNotCleared && s <= StatusConfirmed
}

// statusTransitions enumerates every legal move. Submitted -> Submitted
// covers resubmission, which replaces the chosen subject list.
var statusTransitions = map[EnrollmentStatus]map[EnrollmentStatus]bool{
	StatusNotCleared: {StatusCleared: true},
	StatusCleared:    {StatusNotCleared: true, StatusSubmitted: true},
	StatusSubmitted:  {StatusSubmitted: true, StatusConfirmed: true, StatusCleared: true},
	StatusConfirmed:  {StatusSubmitted: true},
}

// CanTransition reports whether moving from s to the target is legal.
func (s EnrollmentStatus) CanTransition(to EnrollmentStatus) bool {
	return statusTransitions[s][to]
}

// EnrolledSubject is one chosen subject-section on an enrollment record.
type EnrolledSubject struct {
	ID           string `db:"id" json:"id"`
	EnrollmentID string `db:"enrollment_id" json:"-"`
	SubjectCode  string `db:"subject_code" json:"subject_code"`
	Section      string `db:"section" json:"section"`
	Units        int    `db:"units" json:"units"`
}

// EnrollmentRecord is the single workflow record for a (student, academic
// year, term). Version backs the optimistic concurrency check on writes.
type EnrollmentRecord struct {
	ID           string            `db:"id" json:"id"`
	StudentID    string            `db:"student_id" json:"student_id"`
	AcademicYear string            `db:"academic_year" json:"academic_year"`
	Term         Term              `db:"term" json:"term"`
	Status       EnrollmentStatus  `db:"status" json:"status"`
	TotalUnits   int               `db:"total_units" json:"total_units"`
	IsEnrolled   bool              `db:"is_enrolled" json:"is_enrolled"`
	Version      int               `db:"version" json:"-"`
	Subjects     []EnrolledSubject `db:"-" json:"subjects"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// ReplaceSubjects swaps the chosen subject list and recomputes the unit
// total, keeping the total-units invariant in one place.
func (r *EnrollmentRecord) ReplaceSubjects(subjects []EnrolledSubject) {
	r.Subjects = subjects
	total := 0
	for _, s := range subjects {
		total += s.Units
	}
	r.TotalUnits = total
}

// HasSubject reports whether the code is on the current subject list.
func (r *EnrollmentRecord) HasSubject(code string) bool {
	if r == nil {
		return false
	}
	for _, s := range r.Subjects {
		if s.SubjectCode == code {
			return true
		}
	}
	return false
}

// StatusView is the read model served by status queries. Students with no
// record for the term report the zero stage and a nil enrollment ID.
type StatusView struct {
	StudentID    string           `db:"student_id" json:"student_id"`
	Term         Term             `db:"term" json:"term"`
	AcademicYear string           `db:"academic_year" json:"academic_year"`
	Status       EnrollmentStatus `db:"status" json:"status"`
	EnrollmentID *string          `db:"enrollment_id" json:"enrollment_id"`
}
