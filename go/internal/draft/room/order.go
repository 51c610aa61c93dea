package room

import "github.com/mcdev12/bestball/go/internal/models"

// OrderForRound returns the pick order for the given 1-indexed round. With
// snake drafting enabled, even rounds run in reverse participant order.
//
// The result is always a fresh slice; callers on concurrent read paths may
// mutate it freely.
func OrderForRound(participants []models.Participant, round int, snakeEnabled bool) []models.Participant {
	ordered := append([]models.Participant(nil), participants...)
	if !snakeEnabled || round%2 != 0 {
		return ordered
	}
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	return ordered
}
