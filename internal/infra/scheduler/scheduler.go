package scheduler

import (
	"context"
	"fmt"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/telegram"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RecapSource is the part of the summary service the daily job needs.
type RecapSource interface {
	AuditSchedules(ctx context.Context) ([]app.ScheduleIssue, error)
	DailyRecap(ctx context.Context, date time.Time) (string, error)
}

type RecapScheduler struct {
	cronEngine  *cron.Cron
	source      RecapSource
	client      telegram.Client // nil when the bot is disabled
	recapChatID int64
	logger      *logrus.Entry
	cronSpec    string
	now         func() time.Time
}

func NewRecapScheduler(
	source RecapSource,
	client telegram.Client,
	recapChatID int64,
	loc *time.Location,
	cronSpec string, // e.g. "0 21 * * *" (21:00 every day)
	logger *logrus.Entry,
) *RecapScheduler {
	return &RecapScheduler{
		cronEngine:  cron.New(cron.WithLocation(loc)),
		source:      source,
		client:      client,
		recapChatID: recapChatID,
		logger:      logger,
		cronSpec:    cronSpec,
		now:         func() time.Time { return time.Now().In(loc) },
	}
}

// Start registers the daily job and starts the cron engine.
func (s *RecapScheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.cronSpec, func() {
		s.logger.Info("Cron job triggered for daily recap")
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.RunDailyRecap(ctx); err != nil {
			s.logger.WithError(err).Error("Daily recap failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add daily recap cron job %q: %w", s.cronSpec, err)
	}
	s.cronEngine.Start()
	s.logger.WithField("cron_spec", s.cronSpec).Info("Recap scheduler started")
	return nil
}

// RunDailyRecap audits the schedules, renders today's recap and posts it to the
// recap chat when one is configured.
func (s *RecapScheduler) RunDailyRecap(ctx context.Context) error {
	issues, err := s.source.AuditSchedules(ctx)
	if err != nil {
		return fmt.Errorf("failed to audit schedules: %w", err)
	}
	for _, issue := range issues {
		s.logger.WithFields(logrus.Fields{
			"group_id":   issue.GroupID,
			"group_name": issue.GroupName,
		}).WithError(issue.Err).Warn("Duty group schedule needs fixing")
	}

	today := s.now()
	recap, err := s.source.DailyRecap(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to build recap for %s: %w", today.Format("2006-01-02"), err)
	}
	s.logger.WithField("date", today.Format("2006-01-02")).Info(recap)

	if s.client == nil || s.recapChatID == 0 {
		return nil
	}
	if len(issues) > 0 {
		recap += fmt.Sprintf("\n\nPerhatian: %d regu memiliki jadwal yang tidak valid.", len(issues))
	}
	if err := s.client.SendMessage(s.recapChatID, recap, nil); err != nil {
		return fmt.Errorf("failed to send recap to chat %d: %w", s.recapChatID, err)
	}
	return nil
}

func (s *RecapScheduler) Stop() {
	s.logger.Info("Stopping recap scheduler")
	ctx := s.cronEngine.Stop() // waits for running jobs
	<-ctx.Done()
	s.logger.Info("Recap scheduler stopped")
}
