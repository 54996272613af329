package main

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupSeedTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:seed-" + strings.ReplaceAll(uuid.NewString(), "-", "") + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

func TestSeederCreatesDemoData(t *testing.T) {
	gdb := setupSeedTestDB(t)
	s := newSeeder(gdb, logger.Nop())
	ctx := context.Background()

	summary, err := s.run(ctx)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if summary.Skipped {
		t.Fatal("expected first run to seed data")
	}
	if summary.Moods != len(demoMoods) || summary.Activities != len(demoActivities) {
		t.Fatalf("unexpected summary %+v", summary)
	}

	var patient db.User
	if err := gdb.Where("email = ?", demoPatientEmail).First(&patient).Error; err != nil {
		t.Fatalf("demo patient missing: %v", err)
	}
	if patient.Role != enums.UserRolePatient {
		t.Fatalf("expected patient role, got %s", patient.Role)
	}

	latest, err := s.inputs.Latest(ctx, patient.ID)
	if err != nil {
		t.Fatalf("latest input: %v", err)
	}
	if latest != demoProfessionalInput {
		t.Fatalf("expected demo input, got %q", latest)
	}

	activities, err := s.activities.List(ctx, patient.ID)
	if err != nil {
		t.Fatalf("list activities: %v", err)
	}
	statuses := map[enums.ActivityStatus]int{}
	for _, a := range activities {
		statuses[a.Status]++
	}
	if statuses[enums.ActivityStatusPending] != 1 || statuses[enums.ActivityStatusCompleted] != 1 {
		t.Fatalf("expected mixed statuses, got %v", statuses)
	}
}

func TestSeederIsIdempotent(t *testing.T) {
	gdb := setupSeedTestDB(t)
	s := newSeeder(gdb, logger.Nop())
	ctx := context.Background()

	if _, err := s.run(ctx); err != nil {
		t.Fatalf("first run: %v", err)
	}
	summary, err := s.run(ctx)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !summary.Skipped {
		t.Fatal("expected second run to skip")
	}

	var moods int64
	gdb.Model(&db.MoodEntry{}).Count(&moods)
	if moods != int64(len(demoMoods)) {
		t.Fatalf("expected %d moods after rerun, got %d", len(demoMoods), moods)
	}
}

func TestSeederEnsureAdmin(t *testing.T) {
	gdb := setupSeedTestDB(t)
	s := newSeeder(gdb, logger.Nop())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.ensureAdmin(ctx, "Admin@Snuggli.local", "admin-pass-1"); err != nil {
			t.Fatalf("ensure admin #%d: %v", i, err)
		}
	}

	var admins int64
	gdb.Model(&db.User{}).Where("user_type = ?", enums.UserRoleAdmin).Count(&admins)
	if admins != 1 {
		t.Fatalf("expected exactly one admin, got %d", admins)
	}
}
