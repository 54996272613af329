package main

import (
	"context"
	"fmt"

	"github.com/snuggli/internal/apperr"
	"github.com/snuggli/internal/enums"
	"github.com/snuggli/internal/logger"
	"github.com/snuggli/internal/service"
	"gorm.io/gorm"
)

const (
	demoPatientEmail      = "patient@snuggli.local"
	demoProfessionalEmail = "therapist@snuggli.local"
	demoPassword          = "snuggli123"
)

var demoMoods = []struct {
	mood    int
	journal string
}{
	{4, "Slept badly, felt tense most of the morning."},
	{5, "Work was busy but manageable."},
	{6, "Went for a short walk after lunch."},
	{7, "Had coffee with a friend."},
	{6, "Quiet evening, read a few chapters."},
}

var demoActivities = []service.ActivityInput{
	{Name: "Morning stretch", Description: "Ten minutes of gentle stretching after waking up.", Benefit: "Releases tension and sets a calm tone for the day.", Status: string(enums.ActivityStatusCompleted)},
	{Name: "Gratitude journal", Description: "Write down three things that went well today.", Benefit: "Shifts attention toward positive moments.", Status: string(enums.ActivityStatusInProgress)},
	{Name: "Walk", Description: "A 20 minute walk outside without the phone.", Benefit: "Light exercise and daylight lift mood."},
}

const demoProfessionalInput = "Encourage short daily walks and a consistent bedtime."

type seedSummary struct {
	Moods      int
	Activities int
	Skipped    bool
}

type seeder struct {
	log        *logger.Logger
	users      *service.UserService
	moods      *service.MoodService
	activities *service.ActivityService
	inputs     *service.ProfessionalInputService
}

func newSeeder(gdb *gorm.DB, log *logger.Logger) *seeder {
	return &seeder{
		log:        log,
		users:      service.NewUserService(gdb),
		moods:      service.NewMoodService(gdb, log),
		activities: service.NewActivityService(gdb, log),
		inputs:     service.NewProfessionalInputService(gdb, log),
	}
}

func (s *seeder) ensureAdmin(ctx context.Context, email, password string) error {
	_, created, err := s.users.EnsureAdmin(ctx, email, password)
	if err != nil {
		return err
	}
	if created {
		s.log.Info(s.log.WithField(ctx, "email", email), "seed.admin.created")
	}
	return nil
}

// run 创建演示患者与专业人员；演示患者已存在时整体跳过。
func (s *seeder) run(ctx context.Context) (seedSummary, error) {
	patient, err := s.users.Register(ctx, service.RegisterInput{
		Email:    demoPatientEmail,
		Password: demoPassword,
		Role:     string(enums.UserRolePatient),
	})
	if apperr.HasCode(err, apperr.CodeConflict) {
		s.log.Info(ctx, "seed.demo.exists")
		return seedSummary{Skipped: true}, nil
	}
	if err != nil {
		return seedSummary{}, fmt.Errorf("create demo patient: %w", err)
	}

	pro, err := s.users.Register(ctx, service.RegisterInput{
		Email:    demoProfessionalEmail,
		Password: demoPassword,
		Role:     string(enums.UserRoleProfessional),
	})
	if err != nil && !apperr.HasCode(err, apperr.CodeConflict) {
		return seedSummary{}, fmt.Errorf("create demo professional: %w", err)
	}

	var summary seedSummary
	for _, m := range demoMoods {
		if _, err := s.moods.Log(ctx, patient.ID, m.mood, m.journal); err != nil {
			return summary, fmt.Errorf("log demo mood: %w", err)
		}
		summary.Moods++
	}

	for _, input := range demoActivities {
		input.UserID = patient.ID
		if _, err := s.activities.Create(ctx, input); err != nil {
			return summary, fmt.Errorf("create demo activity: %w", err)
		}
		summary.Activities++
	}

	if pro != nil {
		if _, err := s.inputs.Submit(ctx, patient.ID, pro.ID, demoProfessionalInput); err != nil {
			return summary, fmt.Errorf("submit demo input: %w", err)
		}
	} else {
		s.log.Warn(ctx, "seed.demo.professional_exists")
	}

	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"moods":      summary.Moods,
		"activities": summary.Activities,
	}), "seed.demo.done")
	return summary, nil
}
