package rankings_client

import (
	"context"
	"encoding/json"
	"fmt"
)

type RankedPlayer struct {
	ExternalID      string  `json:"id"`
	FullName        string  `json:"full_name"`
	Position        string  `json:"position"`
	Team            string  `json:"team"`
	ByeWeek         int     `json:"bye_week"`
	ADP             float64 `json:"adp"`
	ProjectedPoints float64 `json:"projected_points"`
}

type RankingsResponse struct {
	Sport    string                 `json:"sport"`
	Season   string                 `json:"season"`
	Errors   interface{}            `json:"errors"`
	Metadata map[string]interface{} `json:"metadata"`
	Players  []RankedPlayer         `json:"players"`
}

func (c *RankingsClient) GetNFLRankings(ctx context.Context) ([]RankedPlayer, error) {
	return c.GetRankingsBySeason(ctx, NFLSlug, Season2026)
}

func (c *RankingsClient) GetRankingsBySeason(ctx context.Context, sport, season string) ([]RankedPlayer, error) {
	endpoint := fmt.Sprintf("%s?sport=%s&season=%s", RankingsEndpoint, sport, season)
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get rankings: %w", err)
	}

	var response RankingsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	if response.Errors != nil {
		if errMap, ok := response.Errors.(map[string]interface{}); ok && len(errMap) > 0 {
			return nil, fmt.Errorf("API returned errors: %v", response.Errors)
		}
	}

	return response.Players, nil
}
