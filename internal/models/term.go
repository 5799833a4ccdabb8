package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Term identifies a period within an academic year.
type Term string

const (
	TermFirst  Term = "FIRST"
	TermSecond Term = "SECOND"
	TermSummer Term = "SUMMER"
	// TermBreak is the pseudo-term for dates outside every configured term
	// window. No submissions are accepted during a break.
	TermBreak Term = "BREAK"
)

// Valid reports whether the term is an enrollable period.
func (t Term) Valid() bool {
	switch t {
	case TermFirst, TermSecond, TermSummer:
		return true
	}
	return false
}

// Preceding returns the term immediately before t and the academic year that
// term belongs to. The first semester is preceded by the second semester of
// the prior academic year.
func (t Term) Preceding(academicYear string) (Term, string, error) {
	switch t {
	case TermSecond:
		return TermFirst, academicYear, nil
	case TermSummer:
		return TermSecond, academicYear, nil
	case TermFirst:
		prior, err := PreviousAcademicYear(academicYear)
		if err != nil {
			return "", "", err
		}
		return TermSecond, prior, nil
	}
	return "", "", fmt.Errorf("term %q has no preceding term", t)
}

// AcademicYearStart extracts the numeric start year from a "2025-2026" label.
func AcademicYearStart(academicYear string) (int, error) {
	parts := strings.SplitN(academicYear, "-", 2)
	year, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid academic year %q: %w", academicYear, err)
	}
	return year, nil
}

// PreviousAcademicYear shifts an academic-year label back by one year.
func PreviousAcademicYear(academicYear string) (string, error) {
	start, err := AcademicYearStart(academicYear)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d-%d", start-1, start), nil
}

// TermConfig holds the calendar configuration for one (term, academic year).
type TermConfig struct {
	ID           string    `db:"id" json:"id"`
	Term         Term      `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	EnrollStart  time.Time `db:"enroll_start" json:"enroll_start"`
	EnrollEnd    time.Time `db:"enroll_end" json:"enroll_end"`
}

// WindowOpen reports whether the enrollment window is open at the instant.
func (c TermConfig) WindowOpen(at time.Time) bool {
	return !at.Before(c.EnrollStart) && !at.After(c.EnrollEnd)
}

// TermContext pins an operation to one term of one academic year.
type TermContext struct {
	Term         Term   `json:"term"`
	AcademicYear string `json:"academic_year"`
}
