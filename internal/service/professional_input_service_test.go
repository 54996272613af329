package service

import (
	"context"
	"testing"
	"time"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/db"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/logger"
)

func TestProfessionalInputLatestFallback(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProfessionalInputService(gdb, logger.Nop())

	got, err := svc.Latest(context.Background(), "patient-without-input")
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got != "No professional input available." {
		t.Fatalf("expected sentinel, got %q", got)
	}
}

func TestProfessionalInputLatestReturnsNewest(t *testing.T) {
	gdb := setupServiceTestDB(t)
	patient := createTestUser(t, gdb, "p@example.com", enums.UserRolePatient)
	pro := createTestUser(t, gdb, "pro@example.com", enums.UserRoleProfessional)
	svc := NewProfessionalInputService(gdb, logger.Nop())
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	rows := []db.ProfessionalInput{
		{UserID: patient.ID, AuthorID: pro.ID, Input: "newest", CreatedAt: base.Add(30 * time.Minute)},
		{UserID: patient.ID, AuthorID: pro.ID, Input: "oldest", CreatedAt: base},
		{UserID: patient.ID, AuthorID: pro.ID, Input: "middle", CreatedAt: base.Add(10 * time.Minute)},
	}
	for i := range rows {
		if err := gdb.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}

	got, err := svc.Latest(ctx, patient.ID)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got != "newest" {
		t.Fatalf("expected newest input, got %q", got)
	}

	if _, err := svc.Submit(ctx, patient.ID, pro.ID, "Try a short walk every morning."); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	got, err = svc.Latest(ctx, patient.ID)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got != "Try a short walk every morning." {
		t.Fatalf("expected submitted input to become latest, got %q", got)
	}

	all, err := svc.List(ctx, patient.ID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 4 || all[0].Input != "Try a short walk every morning." {
		t.Fatalf("unexpected list %#v", all)
	}
}

func TestProfessionalInputSubmitRejectsBlank(t *testing.T) {
	gdb := setupServiceTestDB(t)
	svc := NewProfessionalInputService(gdb, logger.Nop())

	for _, text := range []string{"", "   ", "\n\t", "<p> </p>"} {
		if _, err := svc.Submit(context.Background(), "u1", "pro", text); !apperr.HasCode(err, apperr.CodeValidation) {
			t.Fatalf("expected validation error for %q, got %v", text, err)
		}
	}
	if got := countRows(t, gdb, &db.ProfessionalInput{}); got != 0 {
		t.Fatalf("expected no rows, got %d", got)
	}
}

func TestProfessionalInputSubmitRequiresPatient(t *testing.T) {
	gdb := setupServiceTestDB(t)
	pro := createTestUser(t, gdb, "pro@example.com", enums.UserRoleProfessional)
	other := createTestUser(t, gdb, "colleague@example.com", enums.UserRoleProfessional)
	svc := NewProfessionalInputService(gdb, logger.Nop())
	ctx := context.Background()

	if _, err := svc.Submit(ctx, "no-such-user", pro.ID, "Daily walks."); !apperr.HasCode(err, apperr.CodeNotFound) {
		t.Fatalf("expected not found for unknown patient, got %v", err)
	}
	if _, err := svc.Submit(ctx, other.ID, pro.ID, "Daily walks."); !apperr.HasCode(err, apperr.CodeValidation) {
		t.Fatalf("expected validation error for non-patient target, got %v", err)
	}
	if got := countRows(t, gdb, &db.ProfessionalInput{}); got != 0 {
		t.Fatalf("expected no rows, got %d", got)
	}
}

func TestProfessionalInputUsesInjectedClock(t *testing.T) {
	gdb := setupServiceTestDB(t)
	patient := createTestUser(t, gdb, "timed@example.com", enums.UserRolePatient)
	pro := createTestUser(t, gdb, "timer@example.com", enums.UserRoleProfessional)
	svc := NewProfessionalInputService(gdb, logger.Nop())
	ctx := context.Background()

	base := time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC)
	svc.WithClock(func() time.Time { return base.Add(time.Hour) })
	if _, err := svc.Submit(ctx, patient.ID, pro.ID, "newer advice"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	svc.WithClock(func() time.Time { return base })
	if _, err := svc.Submit(ctx, patient.ID, pro.ID, "older advice"); err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	got, err := svc.Latest(ctx, patient.ID)
	if err != nil {
		t.Fatalf("latest failed: %v", err)
	}
	if got != "newer advice" {
		t.Fatalf("expected input with the latest timestamp, got %q", got)
	}
}
