package cron

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/unfreeze-app/unfreeze-backend/internal/services"
)

// Generator is the mission generation entry point the scheduler drives.
type Generator interface {
	GenerateMissions(ctx context.Context) (*services.GenerateReport, error)
}

// StartMissionCron fires mission generation on the given cron spec
// (e.g. "@every 15m"). Ticks never overlap: a tick that is still running
// causes the next one to be skipped. Generation failures are logged and the
// scheduler keeps going; call Stop on the returned cron for a cooperative
// shutdown between ticks.
func StartMissionCron(generator Generator, spec string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DiscardLogger),
	))

	_, err := c.AddFunc(spec, func() {
		report, err := generator.GenerateMissions(context.Background())
		if err != nil {
			logrus.WithError(err).Error("Scheduled mission generation failed")
			return
		}
		logrus.WithFields(logrus.Fields{
			"epoch":   report.Epoch,
			"created": len(report.Created),
			"skipped": len(report.Skipped),
			"failed":  len(report.Failed),
		}).Info("Scheduled mission generation completed")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	logrus.WithField("spec", spec).Info("Mission generation scheduler started")
	return c, nil
}
