package database

import (
	"testing"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Connect(config.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgres("postgresql://u:p@localhost/db"))
	assert.False(t, IsPostgres("hotel.db"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)
	for _, model := range Models() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestSlotKeyIsUnique(t *testing.T) {
	db := openTestDB(t)

	svc := domain.HotelService{Name: "Massage", Type: domain.ServiceSpa, Category: "MASSAGE", Price: 50,
		Duration: 60, MinCapacity: 1, MaxCapacity: 2, AvailableDays: []string{"monday"},
		StartTime: "09:00", EndTime: "12:00", SlotInterval: 60, IsActive: true}
	require.NoError(t, db.Create(&svc).Error)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	first := domain.ServiceTimeSlot{ServiceID: svc.ID, Date: day, StartTime: "09:00", EndTime: "10:00", Capacity: 2, IsAvailable: true}
	require.NoError(t, db.Create(&first).Error)

	dup := domain.ServiceTimeSlot{ServiceID: svc.ID, Date: day, StartTime: "09:00", EndTime: "10:00", Capacity: 2, IsAvailable: true}
	assert.Error(t, db.Create(&dup).Error)
}

func TestSlotBookedCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	svc := domain.HotelService{Name: "Tour", Type: domain.ServiceExperience, Category: "TOUR", Price: 20,
		Duration: 120, MinCapacity: 1, MaxCapacity: 4, AvailableDays: []string{"monday"},
		StartTime: "08:00", EndTime: "18:00", SlotInterval: 120, IsActive: true}
	require.NoError(t, db.Create(&svc).Error)

	slot := domain.ServiceTimeSlot{ServiceID: svc.ID, Date: time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local),
		StartTime: "08:00", EndTime: "10:00", Capacity: 4, IsAvailable: true}
	require.NoError(t, db.Create(&slot).Error)

	err := db.Model(&domain.ServiceTimeSlot{}).Where("id = ?", slot.ID).Update("booked", 5).Error
	assert.Error(t, err)
}

func TestDatesRoundTripAsCalendarDays(t *testing.T) {
	db := openTestDB(t)

	room := domain.Room{Number: "101", Type: domain.RoomSuiteSingle, Price: 100, Capacity: 2, Status: domain.RoomAvailable}
	require.NoError(t, db.Create(&room).Error)

	in := time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)
	res := domain.Reservation{UserID: 1, RoomID: room.ID, CheckIn: in, CheckOut: in.AddDate(0, 0, 3),
		Guests: 2, TotalPrice: 300, Status: domain.ReservationPending}
	require.NoError(t, db.Create(&res).Error)

	var got domain.Reservation
	require.NoError(t, db.First(&got, res.ID).Error)
	assert.True(t, got.CheckIn.Equal(in))
	assert.Equal(t, 3, got.Nights())
}
