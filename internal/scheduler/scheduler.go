package scheduler

import (
	"context"
	"fmt"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type DigestSource interface {
	OpenItemDigests(ctx context.Context) ([]service.Digest, error)
	PurgeRevokedTokens(ctx context.Context) (int64, error)
}

type Mailer interface {
	SendOpenItemsDigest(user models.User, items []models.TodoItem) error
}

// Scheduler runs the periodic background jobs: the open-items digest and the
// revoked-token purge.
type Scheduler struct {
	cron   *cron.Cron
	source DigestSource
	mailer Mailer
	log    *logrus.Logger
}

// New registers the jobs described by cfg. A nil mailer disables the digest.
func New(cfg *config.Config, source DigestSource, mailer Mailer, log *logrus.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(cfg.Location)),
		source: source,
		mailer: mailer,
		log:    log,
	}

	if mailer != nil && cfg.DigestSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.DigestSchedule, func() { s.SendDigests(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid DIGEST_SCHEDULE: %w", err)
		}
	}
	if cfg.TokenPurgeSchedule != "" {
		if _, err := s.cron.AddFunc(cfg.TokenPurgeSchedule, func() { s.PurgeTokens(context.Background()) }); err != nil {
			return nil, fmt.Errorf("invalid TOKEN_PURGE_SCHEDULE: %w", err)
		}
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.log.Infof("Starting scheduler with %d job(s)", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out")
	}
}

// SendDigests mails every user with open items. It returns the number of
// digests delivered. A failed delivery is logged and does not stop the run.
func (s *Scheduler) SendDigests(ctx context.Context) int {
	if s.mailer == nil {
		return 0
	}
	digests, err := s.source.OpenItemDigests(ctx)
	if err != nil {
		s.log.Errorf("Failed to collect digests: %v", err)
		return 0
	}

	sent := 0
	for _, d := range digests {
		if err := s.mailer.SendOpenItemsDigest(d.User, d.Items); err != nil {
			continue
		}
		sent++
	}
	s.log.WithFields(logrus.Fields{"sent": sent, "total": len(digests)}).Info("Digest run finished")
	return sent
}

func (s *Scheduler) PurgeTokens(ctx context.Context) {
	n, err := s.source.PurgeRevokedTokens(ctx)
	if err != nil {
		s.log.Errorf("Failed to purge revoked tokens: %v", err)
		return
	}
	if n > 0 {
		s.log.Infof("Purged %d expired revoked token(s)", n)
	}
}
