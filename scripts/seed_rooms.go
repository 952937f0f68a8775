package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"royalpalace/internal/database"
	"royalpalace/internal/models"
	"royalpalace/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type RoomsConfig struct {
	Rooms []models.Room `yaml:"rooms"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		roomsPath     = flag.String("rooms", "configs/rooms.yaml", "path to rooms.yaml")
		dbPath        = flag.String("db", "./data/royalpalace.db", "path to sqlite db")
		adminEmail    = flag.String("admin-email", "", "create a manager account with this email")
		adminName     = flag.String("admin-name", "Manager", "name for the manager account")
		adminPassword = flag.String("admin-password", "", "password for the manager account")
	)
	flag.Parse()

	data, err := os.ReadFile(*roomsPath)
	if err != nil {
		return fmt.Errorf("read rooms: %w", err)
	}
	var cfg RoomsConfig
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse rooms: %w", err)
	}
	if len(cfg.Rooms) == 0 {
		return fmt.Errorf("no rooms in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	existing, err := db.ListRooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, room := range existing {
		byName[room.Name] = true
	}

	created := 0
	skipped := 0
	for i := range cfg.Rooms {
		room := &cfg.Rooms[i]
		if room.Name == "" {
			continue
		}
		if byName[room.Name] {
			skipped++
			continue
		}
		if room.Status == "" {
			room.Status = models.RoomAvailable
			room.IsAvailable = true
		}
		if err = db.CreateRoom(ctx, room); err != nil {
			return fmt.Errorf("create %s: %w", room.Name, err)
		}
		created++
	}
	logger.Info().Int("created", created).Int("skipped", skipped).Msg("rooms seeded")

	if *adminEmail != "" {
		if *adminPassword == "" {
			return fmt.Errorf("admin-password is required with admin-email")
		}
		if err = seedAdmin(ctx, db, *adminEmail, *adminName, *adminPassword); err != nil {
			return err
		}
		logger.Info().Str("email", *adminEmail).Msg("manager account ready")
	}

	return nil
}

func seedAdmin(ctx context.Context, db *database.DB, email, name, password string) error {
	_, err := db.GetStaffByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return fmt.Errorf("get staff: %w", err)
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return db.CreateStaff(ctx, &models.Staff{
		Email:        email,
		Name:         name,
		Role:         models.RoleManager,
		PasswordHash: hash,
		IsActive:     true,
	})
}
