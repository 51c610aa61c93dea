package room

import (
	"testing"

	"github.com/google/uuid"
	"github.com/mcdev12/bestball/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePick(t *testing.T) {
	participants := testParticipants(3)
	draftedID := uuid.New()

	base := func() *State {
		s := NewState(testRoom(participants, 3))
		s.Room.Status = models.RoomStatusActive
		return s
	}

	tests := []struct {
		name     string
		setup    func() *State
		pick     ProposedPick
		wantCode Code
	}{
		{
			name:  "valid first pick",
			setup: base,
			pick: ProposedPick{
				PickNumber: 1,
				PlayerID:   uuid.New(),
				Position:   models.PositionRB,
				PickedBy:   participants[0].ID,
			},
		},
		{
			name: "room not active",
			setup: func() *State {
				s := base()
				s.Room.Status = models.RoomStatusPaused
				return s
			},
			pick: ProposedPick{
				PickNumber: 1,
				PlayerID:   uuid.New(),
				PickedBy:   participants[0].ID,
			},
			wantCode: CodeRoomNotActive,
		},
		{
			name:  "stale pick number",
			setup: base,
			pick: ProposedPick{
				PickNumber: 2,
				PlayerID:   uuid.New(),
				PickedBy:   participants[0].ID,
			},
			wantCode: CodePickNumberMismatch,
		},
		{
			name:  "participant not on the clock",
			setup: base,
			pick: ProposedPick{
				PickNumber: 1,
				PlayerID:   uuid.New(),
				PickedBy:   participants[2].ID,
			},
			wantCode: CodeNotOnTheClock,
		},
		{
			name: "player already drafted",
			setup: func() *State {
				s := base()
				s.History = append(s.History, models.Pick{
					PickNumber: 1,
					PlayerID:   draftedID,
					PickedBy:   participants[0].ID,
					Position:   models.PositionWR,
				})
				return s
			},
			pick: ProposedPick{
				PickNumber: 2,
				PlayerID:   draftedID,
				PickedBy:   participants[1].ID,
			},
			wantCode: CodePlayerAlreadyDrafted,
		},
		{
			name: "roster limit exceeded when enforced",
			setup: func() *State {
				s := NewState(testRoom(participants, 4))
				s.Room.Status = models.RoomStatusActive
				s.Room.Settings.EnforceRosterLimits = true
				s.Room.Settings.RosterLimits = models.RosterLimits{
					models.PositionQB: {Max: 1},
				}
				// pick 4 opens round 2 in reverse, so the third drafter
				// is on the clock again
				historyThrough(s, 3)
				s.History[2].Position = models.PositionQB
				return s
			},
			pick: ProposedPick{
				PickNumber: 4,
				PlayerID:   uuid.New(),
				Position:   models.PositionQB,
				PickedBy:   participants[2].ID,
			},
			wantCode: CodeRosterLimitExceeded,
		},
		{
			name: "roster limit ignored when not enforced",
			setup: func() *State {
				s := NewState(testRoom(participants, 4))
				s.Room.Status = models.RoomStatusActive
				s.Room.Settings.RosterLimits = models.RosterLimits{
					models.PositionQB: {Max: 1},
				}
				historyThrough(s, 3)
				s.History[2].Position = models.PositionQB
				return s
			},
			pick: ProposedPick{
				PickNumber: 4,
				PlayerID:   uuid.New(),
				Position:   models.PositionQB,
				PickedBy:   participants[2].ID,
			},
		},
		{
			name: "auto pick bypasses on-the-clock check",
			setup: func() *State {
				s := base()
				return s
			},
			pick: ProposedPick{
				PickNumber: 1,
				PlayerID:   uuid.New(),
				Position:   models.PositionWR,
				IsAuto:     true,
			},
		},
		{
			name: "allow gap skips pick number check",
			setup: func() *State {
				s := base()
				return s
			},
			pick: ProposedPick{
				PickNumber: 1,
				PlayerID:   uuid.New(),
				PickedBy:   participants[0].ID,
				AllowGap:   true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePick(tc.setup(), tc.pick)
			if tc.wantCode == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tc.wantCode, err.Code)
		})
	}
}

func TestValidatePickOrderOfChecks(t *testing.T) {
	// A pick that is wrong in every way reports the status check first.
	participants := testParticipants(2)
	s := NewState(testRoom(participants, 1))

	err := ValidatePick(s, ProposedPick{
		PickNumber: 9,
		PlayerID:   uuid.New(),
		PickedBy:   uuid.New(),
	})
	require.NotNil(t, err)
	assert.Equal(t, CodeRoomNotActive, err.Code)
}

func TestAuditStateCleanDraft(t *testing.T) {
	participants := testParticipants(4)
	s := NewState(testRoom(participants, 3))
	s.Room.Status = models.RoomStatusActive
	historyThrough(s, 9)

	assert.Empty(t, AuditState(s))
}

func TestAuditState(t *testing.T) {
	participants := testParticipants(4)

	tests := []struct {
		name     string
		corrupt  func(s *State)
		wantCode Code
	}{
		{
			name: "gap in pick numbers",
			corrupt: func(s *State) {
				s.History[2].PickNumber = 7
			},
			wantCode: CodePickNumberMismatch,
		},
		{
			name: "duplicate player",
			corrupt: func(s *State) {
				s.History[3].PlayerID = s.History[0].PlayerID
			},
			wantCode: CodePlayerAlreadyDrafted,
		},
		{
			name: "pick attributed against draft order",
			corrupt: func(s *State) {
				s.History[1].PickedBy = s.History[0].PickedBy
			},
			wantCode: CodeDraftOrderInconsistent,
		},
		{
			name: "queue references drafted player",
			corrupt: func(s *State) {
				s.Queues[participants[1].ID] = []models.QueuedPlayer{
					{PlayerID: s.History[0].PlayerID, Position: models.PositionRB},
				}
			},
			wantCode: CodeQueueContainsDrafted,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := NewState(testRoom(participants, 3))
			s.Room.Status = models.RoomStatusActive
			historyThrough(s, 6)
			tc.corrupt(s)

			violations := AuditState(s)
			require.NotEmpty(t, violations)
			found := false
			for _, v := range violations {
				if v.Code == tc.wantCode {
					found = true
				}
			}
			assert.True(t, found, "expected a %s violation, got %v", tc.wantCode, violations)
		})
	}
}
