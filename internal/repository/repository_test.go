package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/database"
	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/dateutil"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{DSN: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := dateutil.ParseLocalDate(s)
	require.NoError(t, err)
	return d
}

func seedRoom(t *testing.T, db *gorm.DB, number string, capacity int, status domain.RoomStatus) *domain.Room {
	t.Helper()
	room := &domain.Room{Number: number, Type: domain.RoomSuiteDouble, Price: 100, Capacity: capacity, Status: status}
	require.NoError(t, db.Create(room).Error)
	return room
}

func seedReservation(t *testing.T, db *gorm.DB, roomID int64, in, out string, status domain.ReservationStatus) *domain.Reservation {
	t.Helper()
	res := &domain.Reservation{UserID: 1, RoomID: roomID, CheckIn: day(t, in), CheckOut: day(t, out),
		Guests: 1, TotalPrice: 100, Status: status}
	require.NoError(t, db.Create(res).Error)
	return res
}

func seedService(t *testing.T, db *gorm.DB) *domain.HotelService {
	t.Helper()
	svc := &domain.HotelService{Name: "Stone massage", Type: domain.ServiceSpa, Category: "MASSAGE", Price: 60,
		Duration: 60, MinCapacity: 1, MaxCapacity: 5, AvailableDays: []string{"monday"},
		StartTime: "09:00", EndTime: "12:00", SlotInterval: 60, IsActive: true}
	require.NoError(t, db.Create(svc).Error)
	return svc
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: rooms.number (2067)")))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.False(t, IsUniqueViolation(nil))

	db := setupDB(t)
	seedRoom(t, db, "101", 2, domain.RoomAvailable)
	err := NewRoomRepository(db).Create(context.Background(), &domain.Room{Number: "101", Type: domain.RoomSuiteSingle, Price: 50, Capacity: 1, Status: domain.RoomAvailable})
	assert.True(t, IsUniqueViolation(err))
}

func TestReservationRepository_FindOverlapping(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewReservationRepository(db)
	room := seedRoom(t, db, "201", 2, domain.RoomAvailable)

	a := seedReservation(t, db, room.ID, "2025-03-10", "2025-03-13", domain.ReservationConfirmed)
	seedReservation(t, db, room.ID, "2025-03-13", "2025-03-15", domain.ReservationCancelled)
	seedReservation(t, db, room.ID, "2025-03-20", "2025-03-22", domain.ReservationPending)

	got, err := repo.FindOverlapping(ctx, room.ID, day(t, "2025-03-12"), day(t, "2025-03-14"), 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].ID)

	got, err = repo.FindOverlapping(ctx, room.ID, day(t, "2025-03-13"), day(t, "2025-03-20"), 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = repo.FindOverlapping(ctx, room.ID, day(t, "2025-03-11"), day(t, "2025-03-12"), a.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReservationRepository_StayQueries(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewReservationRepository(db)
	room := seedRoom(t, db, "301", 2, domain.RoomOccupied)

	in := seedReservation(t, db, room.ID, "2025-03-10", "2025-03-13", domain.ReservationCheckedIn)
	seedReservation(t, db, room.ID, "2025-03-14", "2025-03-16", domain.ReservationPending)

	stay, err := repo.FindStayOn(ctx, room.ID, day(t, "2025-03-12"), []domain.ReservationStatus{domain.ReservationCheckedIn})
	require.NoError(t, err)
	require.NotNil(t, stay)
	assert.Equal(t, in.ID, stay.ID)

	stay, err = repo.FindStayOn(ctx, room.ID, day(t, "2025-03-13"), domain.StayReservationStatuses)
	require.NoError(t, err)
	assert.Nil(t, stay)

	arrivals, err := repo.FindCheckInsBetween(ctx, room.ID, day(t, "2025-03-13"), day(t, "2025-03-14"))
	require.NoError(t, err)
	assert.Len(t, arrivals, 1)

	n, err := repo.CountByRoom(ctx, room.ID, domain.ActiveReservationStatuses, in.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	inRange, err := repo.ListInRange(ctx, day(t, "2025-03-01"), day(t, "2025-03-14"))
	require.NoError(t, err)
	require.Len(t, inRange, 1)
	assert.NotNil(t, inRange[0].Room)
}

func TestRoomRepository_ListAvailable(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewRoomRepository(db)

	busy := seedRoom(t, db, "101", 2, domain.RoomAvailable)
	free := seedRoom(t, db, "102", 2, domain.RoomCleaning)
	seedRoom(t, db, "103", 1, domain.RoomAvailable)
	seedRoom(t, db, "104", 4, domain.RoomMaintenance)
	seedReservation(t, db, busy.ID, "2025-03-10", "2025-03-13", domain.ReservationPending)

	rooms, err := repo.ListAvailable(ctx, AvailabilityFilter{CheckIn: day(t, "2025-03-11"), CheckOut: day(t, "2025-03-12"), Guests: 2})
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, free.ID, rooms[0].ID)

	rooms, err = repo.ListAvailable(ctx, AvailabilityFilter{CheckIn: day(t, "2025-03-13"), CheckOut: day(t, "2025-03-14"), Guests: 2})
	require.NoError(t, err)
	assert.Len(t, rooms, 2)

	rooms, err = repo.ListAvailable(ctx, AvailabilityFilter{CheckIn: day(t, "2025-03-13"), CheckOut: day(t, "2025-03-14"), Guests: 1, Type: domain.RoomVillaGrande})
	require.NoError(t, err)
	assert.Empty(t, rooms)
}

func TestRoomRepository_GetForUpdateAndStatus(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewRoomRepository(db)
	room := seedRoom(t, db, "401", 2, domain.RoomAvailable)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.WithTx(tx).GetForUpdate(ctx, room.ID)
		if err != nil {
			return err
		}
		return repo.WithTx(tx).UpdateStatus(ctx, locked.ID, domain.RoomCleaning)
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoomCleaning, got.Status)

	_, err = repo.GetForUpdate(ctx, 9999)
	assert.True(t, IsNotFound(err))
	assert.True(t, IsNotFound(repo.UpdateStatus(ctx, 9999, domain.RoomClosed)))
}

func TestSlotRepository_Counters(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSlotRepository(db)
	svc := seedService(t, db)

	slot := domain.ServiceTimeSlot{ServiceID: svc.ID, Date: day(t, "2025-03-10"), StartTime: "09:00", EndTime: "10:00", Capacity: 5, IsAvailable: true}
	n, err := repo.InsertMissing(ctx, []domain.ServiceTimeSlot{slot})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	stored, err := repo.FindByKey(ctx, svc.ID, day(t, "2025-03-10"), "09:00")
	require.NoError(t, err)

	ok, err := repo.IncrementBooked(ctx, stored.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IncrementBooked(ctx, stored.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok, "only 2 places remain")

	ok, err = repo.UpdateCapacity(ctx, stored.ID, 2)
	require.NoError(t, err)
	assert.False(t, ok, "capacity below booked")

	ok, err = repo.DeleteIfEmpty(ctx, stored.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecrementBooked(ctx, stored.ID, 4)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DecrementBooked(ctx, stored.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, repo.SetAvailable(ctx, stored.ID, false))
	ok, err = repo.IncrementBooked(ctx, stored.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "unavailable slot")

	ok, err = repo.UpdateCapacity(ctx, stored.ID, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.DeleteIfEmpty(ctx, stored.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlotRepository_InsertMissingSkipsExisting(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	repo := NewSlotRepository(db)
	svc := seedService(t, db)

	mk := func(start string, capacity int) domain.ServiceTimeSlot {
		return domain.ServiceTimeSlot{ServiceID: svc.ID, Date: day(t, "2025-03-10"), StartTime: start, EndTime: "x", Capacity: capacity, IsAvailable: true}
	}

	n, err := repo.InsertMissing(ctx, []domain.ServiceTimeSlot{mk("09:00", 5), mk("10:00", 5)})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.InsertMissing(ctx, []domain.ServiceTimeSlot{mk("09:00", 9), mk("10:00", 9), mk("11:00", 9)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	slots, err := repo.ListByServiceAndDate(ctx, svc.ID, day(t, "2025-03-10"))
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, 5, slots[0].Capacity, "existing slot not overwritten")
	assert.Equal(t, 9, slots[2].Capacity)

	n, err = repo.InsertMissing(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
