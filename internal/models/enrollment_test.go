package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnrollmentStatusString(t *testing.T) {
	assert.Equal(t, "NOT_CLEARED", StatusNotCleared.String())
	assert.Equal(t, "CLEARED", StatusCleared.String())
	assert.Equal(t, "SUBMITTED", StatusSubmitted.String())
	assert.Equal(t, "CONFIRMED", StatusConfirmed.String())
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from EnrollmentStatus
		to   EnrollmentStatus
		ok   bool
	}{
		{"clearance", StatusNotCleared, StatusCleared, true},
		{"submit", StatusCleared, StatusSubmitted, true},
		{"resubmit", StatusSubmitted, StatusSubmitted, true},
		{"confirm", StatusSubmitted, StatusConfirmed, true},
		{"revoke clearance", StatusCleared, StatusNotCleared, true},
		{"revoke submission", StatusSubmitted, StatusCleared, true},
		{"revoke confirmation", StatusConfirmed, StatusSubmitted, true},
		{"skip clearance", StatusNotCleared, StatusSubmitted, false},
		{"skip submission", StatusCleared, StatusConfirmed, false},
		{"confirm twice", StatusConfirmed, StatusConfirmed, false},
		{"uncleared confirm", StatusNotCleared, StatusConfirmed, false},
		{"confirmed to cleared", StatusConfirmed, StatusCleared, false},
		{"submitted to not cleared", StatusSubmitted, StatusNotCleared, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.ok, tc.from.CanTransition(tc.to))
		})
	}
}

func TestReplaceSubjectsRecomputesUnits(t *testing.T) {
	rec := &EnrollmentRecord{}
	rec.ReplaceSubjects([]EnrolledSubject{
		{SubjectCode: "MATH101", Section: "A", Units: 3},
		{SubjectCode: "PHYS101", Section: "B", Units: 4},
	})
	assert.Equal(t, 7, rec.TotalUnits)

	rec.ReplaceSubjects(nil)
	assert.Equal(t, 0, rec.TotalUnits)
	assert.Empty(t, rec.Subjects)
}

func TestHasSubject(t *testing.T) {
	var rec *EnrollmentRecord
	assert.False(t, rec.HasSubject("MATH101"))

	rec = &EnrollmentRecord{}
	rec.ReplaceSubjects([]EnrolledSubject{{SubjectCode: "MATH101", Section: "A", Units: 3}})
	assert.True(t, rec.HasSubject("MATH101"))
	assert.False(t, rec.HasSubject("PHYS101"))
}
