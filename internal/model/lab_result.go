package model

import "time"

// LabResult describes a single laboratory measurement as it appears in an
// uploaded lab report.  No route produces or consumes it yet; the upload
// endpoint hands the raw table to the recommendation stub instead.
//
// Fields:
//
//	TestName       – name of the test (e.g. Glucose).
//	Value          – numeric result.
//	Unit           – unit the value is expressed in (e.g. mg/dL).
//	ReferenceRange – free-form normal range reported by the lab.
//	Date           – when the sample was measured.
type LabResult struct {
	TestName       string    `json:"test_name"`
	Value          float64   `json:"value"`
	Unit           string    `json:"unit"`
	ReferenceRange string    `json:"reference_range"`
	Date           time.Time `json:"date"`
}
