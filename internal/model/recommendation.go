package model

// PatientRecommendations is the payload returned by POST /upload-lab-report.
// Every list is ordered and serialized in the order it was built.
type PatientRecommendations struct {
	ClinicianSummary        string   `json:"clinician_summary"`
	RecommendedFoods        []string `json:"recommended_foods"`
	FoodsToLimit            []string `json:"foods_to_limit"`
	SelfCareRecommendations []string `json:"self_care_recommendations"`
	RecommendedSupplements  []string `json:"recommended_supplements"`
	RecommendedMedications  []string `json:"recommended_medications"`
}

// WelcomeResponse is the body of GET /.
type WelcomeResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed upload.
type ErrorResponse struct {
	Detail string `json:"detail"`
}
