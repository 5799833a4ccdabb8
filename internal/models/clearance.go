package models

import "time"

// ClearanceRecord is the administrative gate for a (student, term). The
// enrollment status may not leave its initial stage until cleared.
type ClearanceRecord struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	Term         Term      `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Cleared      bool      `db:"cleared" json:"cleared"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}
