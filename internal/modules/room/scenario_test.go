package room

import (
	"context"
	"testing"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/domain"
	"tierraalta/internal/modules/reservation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStayTurnover(t *testing.T) {
	svc, db, _ := newTestService(t)
	ctx := context.Background()
	reservations := reservation.NewService(db, config.DefaultBooking(), "gateway", nil, nil)
	reservations.SetClock(func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local) })

	room := seedRoom(t, db, "T1", domain.RoomAvailable)
	created, err := reservations.Create(ctx, reservation.CreateInput{
		UserID: 5, RoomID: room.ID, CheckIn: day(t, "2025-03-10"), CheckOut: day(t, "2025-03-12"), Guests: 2,
	})
	require.NoError(t, err)

	change, err := reservations.UpdateStatus(ctx, staff, created.ID, domain.ReservationCheckedIn)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomOccupied, change.RoomStatus)

	_, err = svc.ApplyAction(ctx, staff, room.ID, ActionClean)
	assert.Error(t, err, "an occupied room is not in cleaning")

	change, err = reservations.UpdateStatus(ctx, staff, created.ID, domain.ReservationCheckedOut)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCleaning, change.RoomStatus)

	result, err := svc.ApplyAction(ctx, staff, room.ID, ActionClean)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomAvailable, result.Room.Status)
}
