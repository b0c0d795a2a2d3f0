package sweeper

import (
	"context"

	"github.com/pawdesk/petshop-service/internal/inventory"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically releases active reservations whose expiry has passed.
type Sweeper struct {
	uc       inventory.UseCase
	schedule string
	cron     *cron.Cron
	logger   logger.ZapLogger
}

func New(uc inventory.UseCase, schedule string, log logger.ZapLogger) *Sweeper {
	return &Sweeper{
		uc:       uc,
		schedule: schedule,
		cron:     cron.New(),
		logger:   log,
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		released, err := s.uc.SweepExpired(ctx)
		if err != nil {
			s.logger.Error("reservation expiry sweep failed", zap.Error(err))
			return
		}
		if released > 0 {
			s.logger.Info("reservation expiry sweep completed", zap.Int("released", released))
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("reservation expiry sweeper started", zap.String("schedule", s.schedule))
	return nil
}

func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}
