package models

// EligibilityStatus classifies one catalog subject for one student and term.
type EligibilityStatus string

const (
	EligibilityEnrolled EligibilityStatus = "ENROLLED"
	EligibilityPassed   EligibilityStatus = "PASSED"
	EligibilityRetake   EligibilityStatus = "RETAKE"
	EligibilityBlocked  EligibilityStatus = "BLOCKED"
	EligibilityEligible EligibilityStatus = "ELIGIBLE"
)

// SubjectEligibility pairs a catalog subject with its classification.
type SubjectEligibility struct {
	Subject Subject           `json:"subject"`
	Status  EligibilityStatus `json:"status"`
	Reason  string            `json:"reason,omitempty"`
}

// LoadBand classifies a unit total against the load policy.
type LoadBand string

const (
	LoadNormal   LoadBand = "NORMAL"
	LoadOverload LoadBand = "OVERLOAD"
	LoadExceeded LoadBand = "EXCEEDED"
)

// Load thresholds are fixed policy, exposed as constants so call sites stay
// untouched if they ever move into configuration.
const (
	NormalLoadMaxUnits = 25
	OverloadMaxUnits   = 27
)

// UnitLoad is the result of evaluating a subject selection.
type UnitLoad struct {
	TotalUnits int      `json:"total_units"`
	Band       LoadBand `json:"band"`
}

// RetakeGraceYears is how many academic years a failed subject stays
// retakeable before it is time-barred.
const RetakeGraceYears = 1
