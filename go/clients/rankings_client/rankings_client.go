package rankings_client

import (
	"github.com/mcdev12/bestball/go/clients"
)

type RankingsClient struct {
	*clients.BaseClient
}

func NewRankingsClient(apiKey string) *RankingsClient {
	client := &RankingsClient{
		BaseClient: clients.NewBaseClient(BaseURL),
	}

	client.SetHeader(APIKeyHeader, apiKey)

	return client
}
