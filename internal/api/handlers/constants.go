package handlers

const (
	// Recommendation limits
	defaultRecommendationLimit = 5
	maxRecommendationLimit     = 20

	// Maximum accepted request body (canvas exports are base64 PNGs)
	maxBodyBytes = 8 << 20
)
