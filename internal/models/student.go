package models

import "time"

// Student represents a learner registered in the institution.
type Student struct {
	ID        string    `db:"id" json:"id"`
	StudentNo string    `db:"student_no" json:"student_no"`
	FullName  string    `db:"full_name" json:"full_name"`
	ProgramID string    `db:"program_id" json:"program_id"`
	YearLevel int       `db:"year_level" json:"year_level"`
	Irregular bool      `db:"irregular" json:"irregular"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
