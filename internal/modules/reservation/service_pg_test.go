//go:build postgres

package reservation

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/database"
	"tierraalta/internal/domain"
	"tierraalta/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags postgres ./internal/modules/reservation/
func TestCreate_ConcurrentSameRoomPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := database.Connect(config.DatabaseConfig{DSN: dsn, MaxOpenConns: 20}, nil)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	room := &domain.Room{
		Number: fmt.Sprintf("pg%d", time.Now().UnixNano()%1e12), Type: domain.RoomSuiteDouble,
		Price: 100, Capacity: 2, Floor: 1, Status: domain.RoomAvailable,
	}
	require.NoError(t, db.Create(room).Error)
	t.Cleanup(func() {
		ids := db.Model(&domain.Reservation{}).Select("id").Where("room_id = ?", room.ID)
		db.Where("reservation_id IN (?)", ids).Delete(&domain.Payment{})
		db.Where("room_id = ?", room.ID).Delete(&domain.Reservation{})
		db.Delete(room)
	})

	svc := NewService(db, config.DefaultBooking(), "gateway", &recorder{}, nil)
	svc.SetClock(func() time.Time { return time.Date(2025, 3, 1, 10, 30, 0, 0, time.Local) })

	const n = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	base := input(t, room.ID, "2025-03-10", "2025-03-13", 1)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			<-start
			in := base
			in.UserID = userID
			_, err := svc.Create(context.Background(), in)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperror.Is(err, apperror.KindConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(int64(100 + i))
	}
	close(start)
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)

	var reservations int64
	require.NoError(t, db.Model(&domain.Reservation{}).Where("room_id = ?", room.ID).Count(&reservations).Error)
	assert.Equal(t, int64(1), reservations)
}
