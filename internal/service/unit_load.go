package service

import (
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

// EvaluateUnitLoad totals the selected subjects and classifies the load.
// The result is order-independent: only the unit sum matters.
func EvaluateUnitLoad(subjects []models.EnrolledSubject) models.UnitLoad {
	total := 0
	for _, s := range subjects {
		total += s.Units
	}

	band := models.LoadNormal
	switch {
	case total > models.OverloadMaxUnits:
		band = models.LoadExceeded
	case total > models.NormalLoadMaxUnits:
		band = models.LoadOverload
	}
	return models.UnitLoad{TotalUnits: total, Band: band}
}
