package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"studiobooking/internal/config"
	"studiobooking/internal/database"
	"studiobooking/internal/domain"
	"studiobooking/internal/repository"
	"studiobooking/internal/scheduling"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.Database.URL, database.Options{LogLevel: cfg.Database.LogLevel})
	if err != nil {
		log.Fatal("DB connection failed:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("migrate failed:", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	for _, table := range []string{"staff_assignments", "bookings", "equipment", "studios", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	studios := repository.NewStudioRepository(db)
	equipment := repository.NewEquipmentRepository(db)
	bookings := repository.NewBookingRepository(db)

	// ================== USERS ==================
	log.Println("Creating users...")
	newUser := func(email, password, first, last string, role domain.UserRole) *domain.User {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatal(err)
		}
		u := &domain.User{
			Email:        email,
			PasswordHash: string(hash),
			FirstName:    first,
			LastName:     last,
			Role:         role,
		}
		if err := users.Create(ctx, u); err != nil {
			log.Fatalf("create user %s: %v", email, err)
		}
		return u
	}

	newUser("admin@studiobooking.local", "admin12345", "Ada", "Admin", domain.RoleAdmin)
	engineer := newUser("engineer@studiobooking.local", "staff12345", "Sam", "Mixer", domain.RoleStaff)
	producer := newUser("producer@studiobooking.local", "staff12345", "Pat", "Beats", domain.RoleStaff)
	clients := []*domain.User{
		newUser("cleo@example.com", "client12345", "Cleo", "Vance", domain.RoleClient),
		newUser("marcus@example.com", "client12345", "Marcus", "Lee", domain.RoleClient),
	}

	// ================== STUDIOS ==================
	log.Println("Creating studios...")
	rooms := []domain.Studio{
		{Name: "Studio A", Description: "Large live room with an SSL console", Location: "Floor 1", HourlyRate: 75, Capacity: 8},
		{Name: "Studio B", Description: "Vocal booth and mixing suite", Location: "Floor 2", HourlyRate: 60, Capacity: 3},
		{Name: "Podcast Room", Description: "Four-mic podcast setup", Location: "Floor 2", HourlyRate: 40, Capacity: 4},
	}
	for i := range rooms {
		rooms[i].IsActive = true
		if err := studios.Create(ctx, &rooms[i]); err != nil {
			log.Fatalf("create studio %s: %v", rooms[i].Name, err)
		}
	}

	// ================== EQUIPMENT ==================
	log.Println("Creating equipment...")
	gear := []struct {
		studio         int
		name, category string
		quantity       int
	}{
		{0, "Neumann U87", "Microphone", 2},
		{0, "Yamaha C7 Grand Piano", "Instrument", 1},
		{1, "Shure SM7B", "Microphone", 2},
		{1, "Universal Audio Apollo", "Interface", 1},
		{2, "Rode PodMic", "Microphone", 4},
		{-1, "Fender Twin Reverb", "Amplifier", 1},
	}
	for _, g := range gear {
		e := &domain.Equipment{Name: g.name, Category: g.category, Quantity: g.quantity, IsAvailable: true}
		if g.studio >= 0 {
			id := rooms[g.studio].ID
			e.StudioID = &id
		}
		if err := equipment.Create(ctx, e); err != nil {
			log.Fatalf("create equipment %s: %v", g.name, err)
		}
	}

	// ================== BOOKINGS ==================
	log.Println("Creating bookings...")
	scheduler := scheduling.NewService(studios, bookings, database.NewTxManager(db))
	day := time.Now().UTC().Truncate(24*time.Hour).AddDate(0, 0, 1)
	at := func(days, hour, min int) time.Time {
		return day.AddDate(0, 0, days).Add(time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute)
	}

	seeds := []struct {
		studio     int
		client     *domain.User
		start, end time.Time
		staff      []scheduling.StaffRequest
		status     domain.BookingStatus
	}{
		{0, clients[0], at(0, 14, 0), at(0, 16, 0), []scheduling.StaffRequest{{StaffID: engineer.ID}}, domain.BookingPending},
		{0, clients[1], at(0, 16, 0), at(0, 18, 30), []scheduling.StaffRequest{{StaffID: engineer.ID}, {StaffID: producer.ID, Role: "Producer"}}, domain.BookingConfirmed},
		{1, clients[0], at(1, 10, 0), at(1, 11, 30), nil, domain.BookingConfirmed},
		{2, clients[1], at(-2, 9, 0), at(-2, 12, 0), nil, domain.BookingCompleted},
		{2, clients[0], at(2, 13, 0), at(2, 14, 0), nil, domain.BookingCancelled},
	}
	for i, s := range seeds {
		b, err := scheduler.CreateBooking(ctx, scheduling.CreateRequest{
			StudioID: rooms[s.studio].ID,
			ClientID: s.client.ID,
			Interval: scheduling.NewInterval(s.start, s.end),
			Notes:    fmt.Sprintf("Seed booking %d", i+1),
			Staff:    s.staff,
		})
		if err != nil {
			log.Fatalf("create booking %d: %v", i+1, err)
		}
		if s.status != domain.BookingPending {
			status := s.status
			if _, err := scheduler.UpdateBooking(ctx, b.ID, scheduling.Changes{Status: &status}); err != nil {
				log.Fatalf("set booking %d status: %v", i+1, err)
			}
		}
	}

	log.Println("Seed completed")
	log.Println("Test accounts:")
	log.Println("Admin: admin@studiobooking.local / admin12345")
	log.Println("Staff: engineer@studiobooking.local, producer@studiobooking.local / staff12345")
	log.Println("Clients: cleo@example.com, marcus@example.com / client12345")
}
