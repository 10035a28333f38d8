package service

import (
	"github.com/iliyamo/patient-dashboard-api/internal/model"
	"github.com/iliyamo/patient-dashboard-api/internal/tabular"
)

// GenerateRecommendations returns the recommendation set for an uploaded lab
// report.  The table is not inspected yet: every report, including an empty
// or nil one, gets the same general guidance until per-test thresholds exist.
func GenerateRecommendations(_ *tabular.Table) model.PatientRecommendations {
	return model.PatientRecommendations{
		ClinicianSummary: "Based on your lab results, your overall health indicators are within normal ranges.",
		RecommendedFoods: []string{"Leafy greens", "Lean proteins", "Whole grains"},
		FoodsToLimit:     []string{"Processed foods", "Added sugars", "Saturated fats"},
		SelfCareRecommendations: []string{
			"30 minutes of moderate exercise daily",
			"7-8 hours of sleep per night",
			"Stress management techniques",
		},
		RecommendedSupplements: []string{"Vitamin D", "Omega-3 fatty acids"},
		RecommendedMedications: []string{"Consult with your healthcare provider"},
	}
}
