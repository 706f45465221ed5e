package service

import (
	"context"
	"fmt"
	"time"

	"clinicbooking/internal/entities"
	"clinicbooking/internal/repository"

	"github.com/rs/zerolog"
)

const dateLayout = "2006-01-02"

type JobService struct {
	Repo repository.BookingRepository
	Now  func() time.Time
	log  zerolog.Logger
}

func NewJobService(repo repository.BookingRepository, logger zerolog.Logger) *JobService {
	return &JobService{Repo: repo, Now: time.Now, log: logger}
}

// DailyReport counts the bookings recorded for date, per doctor.
func (s *JobService) DailyReport(ctx context.Context, date string) (*entities.DailyReport, error) {
	bookings, err := s.Repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("cron job: failed to list bookings: %w", err)
	}

	report := &entities.DailyReport{Date: date, ByDoctor: make(map[int]int)}
	for _, b := range bookings {
		if b.Date != date {
			continue
		}
		report.Total++
		report.ByDoctor[b.DoctorID]++
	}
	return report, nil
}

// LogDailyReport is the cron entry point: it reports on today's date.
func (s *JobService) LogDailyReport(ctx context.Context) error {
	today := s.Now().Format(dateLayout)
	report, err := s.DailyReport(ctx, today)
	if err != nil {
		s.log.Error().Err(err).Msg("daily booking report failed")
		return err
	}

	evt := s.log.Info().Str("date", report.Date).Int("total", report.Total)
	for doctorID, n := range report.ByDoctor {
		evt = evt.Int(fmt.Sprintf("doctor_%d", doctorID), n)
	}
	evt.Msg("daily booking report")
	return nil
}
