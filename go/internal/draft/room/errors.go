package room

import "fmt"

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeRoomNotActive          Code = "ROOM_NOT_ACTIVE"
	CodePickNumberMismatch     Code = "PICK_NUMBER_MISMATCH"
	CodeNotOnTheClock          Code = "NOT_ON_THE_CLOCK"
	CodePlayerAlreadyDrafted   Code = "PLAYER_ALREADY_DRAFTED"
	CodeRosterLimitExceeded    Code = "ROSTER_LIMIT_EXCEEDED"
	CodeDraftOrderInconsistent Code = "DRAFT_ORDER_INCONSISTENT"
	CodeQueueContainsDrafted   Code = "QUEUE_CONTAINS_DRAFTED_PLAYER"
	CodeSettingsLocked         Code = "SETTINGS_LOCKED"
)

// ValidationError is a rejected mutation. It never corrupts canonical state:
// the failed transformation is discarded in full and the caller may retry
// with corrected input.
type ValidationError struct {
	Code   Code
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Reason)
}

func rejectf(code Code, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Reason: fmt.Sprintf(format, args...)}
}
