package room

import (
	"strings"

	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/apperror"
)

// Action is a staff command that drives the room's operational status.
type Action string

const (
	ActionOpen        Action = "OPEN"
	ActionClose       Action = "CLOSED"
	ActionMaintenance Action = "MAINTENANCE"
	ActionCleaning    Action = "CLEANING"
	ActionDirty       Action = "DIRTY"
	ActionClean       Action = "CLEAN"
)

// ParseAction accepts the action token in any letter case.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(s)))
	switch a {
	case ActionOpen, ActionClose, ActionMaintenance, ActionCleaning, ActionDirty, ActionClean:
		return a, nil
	}
	return "", apperror.Validation("unknown room action %q, expected one of OPEN, CLOSED, MAINTENANCE, CLEANING, DIRTY, CLEAN", s)
}

// Facts is what the transition table needs to know about a room's bookings.
type Facts struct {
	Current domain.RoomStatus
	// HasActive is true when any PENDING, CONFIRMED or CHECKED_IN reservation exists.
	HasActive bool
	// HasCheckedIn is true when a guest is checked in.
	HasCheckedIn bool
	// StayingNow is true when a stay in progress covers today.
	StayingNow bool
}

// Next returns the status the action moves the room to, or a conflict that
// names the current status and the reason the action is refused.
func Next(action Action, f Facts) (domain.RoomStatus, error) {
	switch action {
	case ActionOpen:
		if f.Current != domain.RoomClosed {
			return "", apperror.Conflict("room is %s: only a CLOSED room can be opened", f.Current)
		}
		if f.HasActive {
			return domain.RoomCleaning, nil
		}
		return domain.RoomAvailable, nil

	case ActionClose:
		if f.Current == domain.RoomClosed {
			return "", apperror.Conflict("room is already CLOSED")
		}
		if f.HasCheckedIn {
			return "", apperror.Conflict("room is %s: a guest is checked in, so it cannot be closed", f.Current)
		}
		if f.HasActive {
			return "", apperror.Conflict("room is %s: it has active reservations, so it cannot be closed", f.Current)
		}
		return domain.RoomClosed, nil

	case ActionMaintenance:
		if f.Current == domain.RoomClosed {
			return "", apperror.Conflict("room is CLOSED: open it before scheduling maintenance")
		}
		if f.HasCheckedIn {
			return "", apperror.Conflict("room is %s: a guest is checked in, so it cannot go into maintenance", f.Current)
		}
		return domain.RoomMaintenance, nil

	case ActionCleaning, ActionDirty:
		if f.Current == domain.RoomClosed {
			return "", apperror.Conflict("room is CLOSED: open it before sending it to cleaning")
		}
		if f.HasCheckedIn {
			return "", apperror.Conflict("room is %s: a guest is checked in, so it cannot be cleaned now", f.Current)
		}
		return domain.RoomCleaning, nil

	case ActionClean:
		if f.Current != domain.RoomCleaning {
			return "", apperror.Conflict("room is %s: only a room in CLEANING can be marked clean", f.Current)
		}
		if f.StayingNow {
			return domain.RoomOccupied, nil
		}
		return domain.RoomAvailable, nil
	}
	return "", apperror.Validation("unknown room action %q", action)
}
