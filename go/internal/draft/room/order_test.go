package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testParticipants(n int) []models.Participant {
	out := make([]models.Participant, n)
	for i := range out {
		out[i] = models.Participant{
			ID:          uuid.New(),
			DisplayName: string(rune('A' + i)),
		}
	}
	return out
}

func TestOrderForRound(t *testing.T) {
	participants := testParticipants(4)

	tests := []struct {
		name         string
		round        int
		snakeEnabled bool
		want         []models.Participant
	}{
		{
			name:         "round 1 is registration order",
			round:        1,
			snakeEnabled: true,
			want:         participants,
		},
		{
			name:         "round 2 reverses with snake enabled",
			round:        2,
			snakeEnabled: true,
			want:         []models.Participant{participants[3], participants[2], participants[1], participants[0]},
		},
		{
			name:         "round 3 returns to registration order",
			round:        3,
			snakeEnabled: true,
			want:         participants,
		},
		{
			name:         "round 4 reverses again",
			round:        4,
			snakeEnabled: true,
			want:         []models.Participant{participants[3], participants[2], participants[1], participants[0]},
		},
		{
			name:         "even round keeps order with snake disabled",
			round:        2,
			snakeEnabled: false,
			want:         participants,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := OrderForRound(participants, tc.round, tc.snakeEnabled)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestOrderForRoundReturnsFreshSlice(t *testing.T) {
	participants := testParticipants(3)

	a := OrderForRound(participants, 1, true)
	a[0], a[2] = a[2], a[0]

	b := OrderForRound(participants, 1, true)
	require.Equal(t, participants, b, "mutating a previous result must not affect later calls")
	require.Equal(t, participants[0], b[0])
}

func TestOrderForRoundSingleParticipant(t *testing.T) {
	participants := testParticipants(1)

	for round := 1; round <= 4; round++ {
		got := OrderForRound(participants, round, true)
		assert.Equal(t, participants, got)
	}
}
