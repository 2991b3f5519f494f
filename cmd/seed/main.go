// Command seed loads demo staff, guests, rooms and services. Running it again
// leaves existing rows untouched and only fills in what is missing.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"tierraalta/internal/config"
	"tierraalta/internal/database"
	"tierraalta/internal/domain"
	"tierraalta/internal/logging"
	"tierraalta/internal/modules/hotelservice"
	"tierraalta/internal/pkg/dateutil"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const slotHorizonDays = 30

type seedUser struct {
	email    string
	name     string
	role     domain.UserRole
	password string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load("")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}
	logger := baseLogger.With().Str("component", "seed").Logger()

	db, err := database.Connect(cfg.Database, baseLogger)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	ctx := context.Background()
	admin, err := seedUsers(ctx, db, cfg.Auth.BcryptCost, &logger)
	if err != nil {
		return err
	}
	if err := seedRooms(ctx, db, &logger); err != nil {
		return err
	}
	services, err := seedServices(ctx, db, &logger)
	if err != nil {
		return err
	}

	slots := hotelservice.NewService(db, cfg.Booking, cfg.Payments.Provider, nil, baseLogger)
	actor := domain.Principal{ID: admin.ID, Role: admin.Role}
	start := dateutil.DayOf(time.Now())
	end := start.AddDate(0, 0, slotHorizonDays-1)
	for _, svc := range services {
		n, err := slots.GenerateSlots(ctx, actor, svc.ID, start, end)
		if err != nil {
			return fmt.Errorf("generate slots for %s: %w", svc.Name, err)
		}
		logger.Info().Str("service", svc.Name).Int64("created", n).Msg("slots generated")
	}

	logger.Info().Msg("seed complete")
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// seedUsers creates the demo accounts and returns the admin.
func seedUsers(ctx context.Context, db *gorm.DB, cost int, logger *zerolog.Logger) (*domain.User, error) {
	users := []seedUser{
		{"admin@tierraalta.test", "Hotel Admin", domain.RoleAdmin, envOr("SEED_ADMIN_PASSWORD", "admin12345")},
		{"frontdesk@tierraalta.test", "Front Desk", domain.RoleOperator, envOr("SEED_OPERATOR_PASSWORD", "operator12345")},
		{"guest@tierraalta.test", "Demo Guest", domain.RoleUser, envOr("SEED_GUEST_PASSWORD", "guest12345")},
	}

	var admin domain.User
	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		var row domain.User
		err = db.WithContext(ctx).
			Where(domain.User{Email: u.email}).
			Attrs(domain.User{Name: u.name, Role: u.role, PasswordHash: string(hash)}).
			FirstOrCreate(&row).Error
		if err != nil {
			return nil, fmt.Errorf("seed user %s: %w", u.email, err)
		}
		logger.Info().Str("email", u.email).Str("role", string(row.Role)).Msg("user ready")
		if row.Role == domain.RoleAdmin && admin.ID == 0 {
			admin = row
		}
	}
	if admin.ID == 0 {
		return nil, fmt.Errorf("admin@tierraalta.test exists without the ADMIN role")
	}
	return &admin, nil
}

func seedRooms(ctx context.Context, db *gorm.DB, logger *zerolog.Logger) error {
	rooms := []domain.Room{
		{Number: "101", Type: domain.RoomSuiteSingle, Price: 120, Capacity: 2, Floor: 1, Status: domain.RoomAvailable},
		{Number: "102", Type: domain.RoomSuiteSingle, Price: 120, Capacity: 2, Floor: 1, Status: domain.RoomAvailable},
		{Number: "201", Type: domain.RoomSuiteDouble, Price: 180, Capacity: 4, Floor: 2, Status: domain.RoomAvailable},
		{Number: "202", Type: domain.RoomSuiteDouble, Price: 180, Capacity: 4, Floor: 2, Status: domain.RoomMaintenance},
		{Number: "V1", Type: domain.RoomVillaPetit, Price: 260, Capacity: 4, Status: domain.RoomAvailable},
		{Number: "V2", Type: domain.RoomVillaGrande, Price: 390, Capacity: 8, Status: domain.RoomAvailable},
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "number"}}, DoNothing: true}).
		Create(&rooms)
	if res.Error != nil {
		return fmt.Errorf("seed rooms: %w", res.Error)
	}
	logger.Info().Int64("created", res.RowsAffected).Int("total", len(rooms)).Msg("rooms ready")
	return nil
}

func seedServices(ctx context.Context, db *gorm.DB, logger *zerolog.Logger) ([]domain.HotelService, error) {
	weekdays := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}
	everyDay := append(append([]string{}, weekdays...), "saturday", "sunday")

	services := []domain.HotelService{
		{
			Name: "Hot stone massage", Type: domain.ServiceSpa, Category: "MASSAGE",
			Price: 65, PricePerPerson: true, Duration: 60, MinCapacity: 1, MaxCapacity: 2,
			AvailableDays: everyDay, StartTime: "10:00", EndTime: "19:00", SlotInterval: 60, IsActive: true,
		},
		{
			Name: "Volcanic clay facial", Type: domain.ServiceSpa, Category: "FACIAL",
			Price: 45, PricePerPerson: true, Duration: 45, MinCapacity: 1, MaxCapacity: 1,
			AvailableDays: weekdays, StartTime: "09:00", EndTime: "17:00", SlotInterval: 45, IsActive: true,
		},
		{
			Name: "Vineyard tour and tasting", Type: domain.ServiceExperience, Category: "GASTRONOMY",
			Price: 240, PricePerPerson: false, Duration: 180, MinCapacity: 2, MaxCapacity: 8,
			AvailableDays: []string{"wednesday", "saturday"}, StartTime: "10:00", EndTime: "17:00", SlotInterval: 240, IsActive: true,
		},
	}

	out := make([]domain.HotelService, 0, len(services))
	for _, svc := range services {
		var row domain.HotelService
		err := db.WithContext(ctx).
			Where(domain.HotelService{Name: svc.Name}).
			Attrs(svc).
			FirstOrCreate(&row).Error
		if err != nil {
			return nil, fmt.Errorf("seed service %s: %w", svc.Name, err)
		}
		logger.Info().Int64("id", row.ID).Str("service", row.Name).Msg("service ready")
		if row.IsActive {
			out = append(out, row)
		}
	}
	return out, nil
}
