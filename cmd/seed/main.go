package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cinecore/internal/catalog"
	"cinecore/internal/layout"
	"cinecore/internal/shared/config"
	"cinecore/internal/shared/database"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting CineCore Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"booking_combos",
		"booking_seats",
		"bookings",
		"vouchers",
		"combos",
		"showtimes",
		"theaters",
	}

	for _, table := range tables {
		if err := s.db.GetPostgreSQL().Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			// Table may not exist yet on a fresh database
			log.Printf("⚠️  Could not truncate %s: %v", table, err)
		}
	}
	return nil
}

// SeedAll seeds theaters, showtimes, combos and vouchers
func (s *Seeder) SeedAll() error {
	theaters, err := s.SeedTheaters()
	if err != nil {
		return fmt.Errorf("failed to seed theaters: %w", err)
	}
	fmt.Printf("  🏛  Seeded %d theaters\n", len(theaters))

	showtimes, err := s.SeedShowtimes(theaters)
	if err != nil {
		return fmt.Errorf("failed to seed showtimes: %w", err)
	}
	fmt.Printf("  🎬 Seeded %d showtimes\n", len(showtimes))

	combos, err := s.SeedCombos()
	if err != nil {
		return fmt.Errorf("failed to seed combos: %w", err)
	}
	fmt.Printf("  🍿 Seeded %d combos\n", len(combos))

	vouchers, err := s.SeedVouchers()
	if err != nil {
		return fmt.Errorf("failed to seed vouchers: %w", err)
	}
	fmt.Printf("  🎟  Seeded %d vouchers\n", len(vouchers))

	return nil
}

// SeedTheaters creates two halls with different authored layouts
func (s *Seeder) SeedTheaters() ([]catalog.Theater, error) {
	branchID := uuid.New()

	standardLayout := layout.SeatLayout{
		Rows:        8,
		SeatsPerRow: 12,
		RowLabels:   []string{"A", "B", "C", "D", "E", "F", "G", "H"},
		VIPRows:     []string{"E", "F"},
		CoupleSeats: []layout.CouplePair{
			{Row: "H", StartSeat: 1, EndSeat: 2},
			{Row: "H", StartSeat: 3, EndSeat: 4},
			{Row: "H", StartSeat: 5, EndSeat: 6},
		},
		DisabledSeats: []layout.Seat{
			{Row: "A", Number: 1},
			{Row: "A", Number: 12},
		},
	}

	smallLayout := layout.SeatLayout{
		Rows:        5,
		SeatsPerRow: 8,
		RowLabels:   []string{"A", "B", "C", "D", "E"},
		VIPRows:     []string{"C"},
		CoupleSeats: []layout.CouplePair{
			{Row: "E", StartSeat: 1, EndSeat: 2},
		},
	}

	theaters := []catalog.Theater{
		{ID: uuid.New(), BranchID: branchID, Name: "Hall 1"},
		{ID: uuid.New(), BranchID: branchID, Name: "Hall 2"},
	}

	layouts := []layout.SeatLayout{standardLayout, smallLayout}
	for i := range theaters {
		if err := layouts[i].Validate(); err != nil {
			return nil, err
		}
		data, err := json.Marshal(layouts[i])
		if err != nil {
			return nil, err
		}
		theaters[i].LayoutJSON = data
		if err := s.db.GetPostgreSQL().Create(&theaters[i]).Error; err != nil {
			return nil, err
		}
	}

	return theaters, nil
}

// SeedShowtimes schedules screenings for the next three days
func (s *Seeder) SeedShowtimes(theaters []catalog.Theater) ([]catalog.Showtime, error) {
	var showtimes []catalog.Showtime

	slots := []int{10, 14, 18, 21}
	base := time.Now().Truncate(24 * time.Hour)

	for day := 0; day < 3; day++ {
		for _, theater := range theaters {
			for _, hour := range slots {
				start := base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
				showtime := catalog.Showtime{
					ID:            uuid.New(),
					TheaterID:     theater.ID,
					MovieID:       uuid.New(),
					StartTime:     start,
					EndTime:       start.Add(2 * time.Hour),
					StandardPrice: 90000,
					VIPPrice:      120000,
					CouplePrice:   150000,
				}
				if err := s.db.GetPostgreSQL().Create(&showtime).Error; err != nil {
					return nil, err
				}
				showtimes = append(showtimes, showtime)
			}
		}
	}

	return showtimes, nil
}

// SeedCombos creates the concession bundles
func (s *Seeder) SeedCombos() ([]catalog.Combo, error) {
	combos := []catalog.Combo{
		{ID: uuid.New(), Name: "Popcorn + Coke", Price: 45000, IsActive: true},
		{ID: uuid.New(), Name: "Family Pack", Price: 99000, IsActive: true},
		{ID: uuid.New(), Name: "Nachos Solo", Price: 35000, IsActive: true},
		{ID: uuid.New(), Name: "Retired Promo", Price: 20000, IsActive: false},
	}

	for i := range combos {
		if err := s.db.GetPostgreSQL().Create(&combos[i]).Error; err != nil {
			return nil, err
		}
	}
	return combos, nil
}

// SeedVouchers creates a mix of live and expired discount codes
func (s *Seeder) SeedVouchers() ([]catalog.Voucher, error) {
	now := time.Now()
	vouchers := []catalog.Voucher{
		{
			Code:          "WELCOME10",
			DiscountType:  "PERCENTAGE",
			DiscountValue: 10,
			MinPurchase:   0,
			MaxDiscount:   50000,
			StartDate:     now.AddDate(0, -1, 0),
			EndDate:       now.AddDate(0, 1, 0),
			IsActive:      true,
		},
		{
			Code:          "FLAT30K",
			DiscountType:  "FIXED",
			DiscountValue: 30000,
			MinPurchase:   200000,
			StartDate:     now.AddDate(0, -1, 0),
			EndDate:       now.AddDate(0, 1, 0),
			IsActive:      true,
		},
		{
			Code:          "EXPIRED50",
			DiscountType:  "PERCENTAGE",
			DiscountValue: 50,
			StartDate:     now.AddDate(0, -2, 0),
			EndDate:       now.AddDate(0, -1, 0),
			IsActive:      true,
		},
	}

	for i := range vouchers {
		if err := s.db.GetPostgreSQL().Create(&vouchers[i]).Error; err != nil {
			return nil, err
		}
	}
	return vouchers, nil
}
