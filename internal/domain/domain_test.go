package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrincipal(t *testing.T) {
	guest := Principal{ID: 5, Role: RoleUser}
	op := Principal{ID: 9, Role: RoleOperator}
	anon := Principal{}

	assert.True(t, guest.CanAccess(5))
	assert.False(t, guest.CanAccess(6))
	assert.True(t, op.CanAccess(6))
	assert.False(t, anon.CanAccess(0))
	assert.True(t, RoleAdmin.IsStaff())
	assert.False(t, RoleUser.IsStaff())
	assert.False(t, UserRole("root").Valid())
}

func TestReservationStatus(t *testing.T) {
	assert.True(t, ReservationPending.Active())
	assert.True(t, ReservationCheckedIn.Active())
	assert.False(t, ReservationCheckedOut.Active())
	assert.True(t, ReservationCancelled.Terminal())
	assert.False(t, ReservationConfirmed.Terminal())
	assert.False(t, ReservationStatus("LOST").Valid())
}

func TestRoomStatusBookable(t *testing.T) {
	assert.True(t, RoomAvailable.Bookable())
	assert.True(t, RoomCleaning.Bookable())
	assert.False(t, RoomClosed.Bookable())
	assert.False(t, RoomMaintenance.Bookable())
}

func TestHotelService(t *testing.T) {
	svc := HotelService{Type: ServiceSpa, Price: 40, PricePerPerson: true, AvailableDays: []string{"monday", "friday"}}

	assert.Equal(t, 120.0, svc.PriceFor(3))
	svc.PricePerPerson = false
	assert.Equal(t, 40.0, svc.PriceFor(3))

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	assert.True(t, svc.OffersOn(monday))
	assert.False(t, svc.OffersOn(monday.AddDate(0, 0, 1)))

	assert.True(t, ServiceSpa.AllowsCategory("MASSAGE"))
	assert.False(t, ServiceSpa.AllowsCategory("TOUR"))
	assert.False(t, ServiceType("GOLF").Valid())
}

func TestSlotRemaining(t *testing.T) {
	assert.Equal(t, 2, (&ServiceTimeSlot{Capacity: 5, Booked: 3}).Remaining())
	assert.Equal(t, 0, (&ServiceTimeSlot{Capacity: 5, Booked: 5}).Remaining())
	assert.Equal(t, 0, (&ServiceTimeSlot{Capacity: 2, Booked: 3}).Remaining())
}
