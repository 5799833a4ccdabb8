package models

import "time"

// GradeStatus is the derived standing of one academic record entry.
type GradeStatus string

const (
	GradePassed     GradeStatus = "PASSED"
	GradeFailed     GradeStatus = "FAILED"
	GradeIncomplete GradeStatus = "INCOMPLETE"
	GradeInProgress GradeStatus = "IN_PROGRESS"
)

// PassingGrade is the highest grade counted as passing.
const PassingGrade = 3.0

// AcademicRecordEntry is one row of the append-only subject history. A later
// entry for the same subject and term supersedes the earlier one logically.
type AcademicRecordEntry struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	SubjectCode  string    `db:"subject_code" json:"subject_code"`
	Section      string    `db:"section" json:"section"`
	Term         Term      `db:"term" json:"term"`
	AcademicYear string    `db:"academic_year" json:"academic_year"`
	Grade        *float64  `db:"grade" json:"grade,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Status derives the standing from the grade. An unposted grade means the
// subject is still in progress; a grade of zero marks an incomplete.
func (e AcademicRecordEntry) Status() GradeStatus {
	if e.Grade == nil {
		return GradeInProgress
	}
	switch {
	case *e.Grade == 0:
		return GradeIncomplete
	case *e.Grade <= PassingGrade:
		return GradePassed
	default:
		return GradeFailed
	}
}

// History is a student's full record, ordered oldest first.
type History []AcademicRecordEntry

// Effective collapses superseded entries, keeping the latest row per
// (subject, term, academic year).
func (h History) Effective() History {
	type key struct {
		code, section string
		term          Term
		year          string
	}
	latest := make(map[key]int, len(h))
	for i, entry := range h {
		latest[key{entry.SubjectCode, entry.Section, entry.Term, entry.AcademicYear}] = i
	}
	keep := make(map[int]bool, len(latest))
	for _, i := range latest {
		keep[i] = true
	}
	out := make(History, 0, len(latest))
	for i, entry := range h {
		if keep[i] {
			out = append(out, entry)
		}
	}
	return out
}

// Passed reports whether any effective entry for the code is passing.
func (h History) Passed(code string) bool {
	for _, entry := range h.Effective() {
		if entry.SubjectCode == code && entry.Status() == GradePassed {
			return true
		}
	}
	return false
}

// FirstFailedYear returns the start year of the earliest academic year in
// which the subject was failed. The second result is false when the subject
// was never failed.
func (h History) FirstFailedYear(code string) (int, bool) {
	first := 0
	found := false
	for _, entry := range h.Effective() {
		if entry.SubjectCode != code || entry.Status() != GradeFailed {
			continue
		}
		year, err := AcademicYearStart(entry.AcademicYear)
		if err != nil {
			continue
		}
		if !found || year < first {
			first = year
			found = true
		}
	}
	return first, found
}
