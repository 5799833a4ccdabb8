package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

func selectionOfUnits(units ...int) []models.EnrolledSubject {
	subjects := make([]models.EnrolledSubject, 0, len(units))
	for i, u := range units {
		subjects = append(subjects, models.EnrolledSubject{
			SubjectCode: string(rune('A' + i)),
			Section:     "1",
			Units:       u,
		})
	}
	return subjects
}

func TestEvaluateUnitLoadBands(t *testing.T) {
	cases := []struct {
		name  string
		units []int
		total int
		band  models.LoadBand
	}{
		{"empty", nil, 0, models.LoadNormal},
		{"light", []int{3, 3}, 6, models.LoadNormal},
		{"at normal cap", []int{13, 12}, 25, models.LoadNormal},
		{"just over normal", []int{13, 13}, 26, models.LoadOverload},
		{"at overload cap", []int{14, 13}, 27, models.LoadOverload},
		{"exceeded", []int{14, 14}, 28, models.LoadExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			load := EvaluateUnitLoad(selectionOfUnits(tc.units...))
			assert.Equal(t, tc.total, load.TotalUnits)
			assert.Equal(t, tc.band, load.Band)
		})
	}
}

func TestEvaluateUnitLoadOrderIndependent(t *testing.T) {
	forward := EvaluateUnitLoad(selectionOfUnits(5, 9, 12))
	reversed := EvaluateUnitLoad(selectionOfUnits(12, 9, 5))
	assert.Equal(t, forward, reversed)
}
