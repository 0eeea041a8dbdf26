package cron

import (
	"context"
	"time"

	"meridian/internal/service"

	"github.com/google/wire"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ProviderSet = wire.NewSet(NewCron)

// 夜間全量重疊掃描排程（含秒欄位）
const overlapScanSchedule = "0 0 3 * * *"

type Cron struct {
	logger      *zap.Logger
	server      *cron.Cron
	areaService *service.ServiceAreaService
}

// NewCron .
func NewCron(logger *zap.Logger, areaService *service.ServiceAreaService) *Cron {
	server := cron.New(
		cron.WithSeconds(),
	)

	return &Cron{
		logger:      logger,
		server:      server,
		areaService: areaService,
	}
}

func (c *Cron) Run() error {
	if _, err := c.server.AddFunc(overlapScanSchedule, c.scanOverlaps); err != nil {
		return err
	}

	c.server.Start()
	return nil
}

func (c *Cron) Stop(ctx context.Context) error {
	c.server.Stop()
	return nil
}

func (c *Cron) scanOverlaps() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	found, err := c.areaService.ScanOverlaps(ctx)
	if err != nil {
		c.logger.Error("overlap scan failed", zap.Error(err))
		return
	}
	c.logger.Info("overlap scan finished", zap.Int("overlappingPairs", found))
}
