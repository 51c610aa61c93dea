package rankings_client

const (
	// Base URL
	BaseURL = "https://api.underdogfantasy.com/beta/v5"

	// API Endpoints
	RankingsEndpoint    = "/rankings"
	ProjectionsEndpoint = "/projections"

	// Sport slugs
	NFLSlug = "nfl"

	// Seasons
	Season2024 = "2024"
	Season2025 = "2025"
	Season2026 = "2026"

	// Headers
	APIKeyHeader = "X-API-Key"
)
