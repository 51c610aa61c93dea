package clients

// RankingSource represents different ADP and projection providers
type RankingSource string

const (
	// RankingSourceUnderdog represents Underdog ADP exports
	RankingSourceUnderdog RankingSource = "underdog"

	// RankingSourceFantasyPros represents consensus expert rankings
	RankingSourceFantasyPros RankingSource = "fantasypros"

	// RankingSourceManual represents manually entered rankings
	RankingSourceManual RankingSource = "manual"
)

// RankingSourceConfig holds configuration for ranking providers
type RankingSourceConfig struct {
	Source      RankingSource `json:"source"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Priority    int           `json:"priority"` // Higher priority sources override lower ones
	Active      bool          `json:"active"`
}

// GetRankingSources returns all configured ranking providers
func GetRankingSources() map[RankingSource]RankingSourceConfig {
	return map[RankingSource]RankingSourceConfig{
		RankingSourceUnderdog: {
			Source:      RankingSourceUnderdog,
			Name:        "Underdog",
			Description: "Underdog best ball ADP export",
			Priority:    100,
			Active:      true,
		},
		RankingSourceFantasyPros: {
			Source:      RankingSourceFantasyPros,
			Name:        "FantasyPros",
			Description: "Expert consensus rankings",
			Priority:    80,
			Active:      false,
		},
		RankingSourceManual: {
			Source:      RankingSourceManual,
			Name:        "Manual Entry",
			Description: "Manually entered ranking data",
			Priority:    10,
			Active:      true,
		},
	}
}

// ValidateRankingSource checks if the source is valid
func ValidateRankingSource(source RankingSource) bool {
	sources := GetRankingSources()
	_, exists := sources[source]
	return exists
}

// GetHighestPrioritySource returns the active provider with highest priority
func GetHighestPrioritySource() RankingSource {
	var highest RankingSource
	var highestPriority int

	for source, config := range GetRankingSources() {
		if !config.Active {
			continue
		}
		if config.Priority > highestPriority {
			highest = source
			highestPriority = config.Priority
		}
	}

	return highest
}
