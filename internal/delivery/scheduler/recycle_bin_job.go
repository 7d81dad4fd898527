package scheduler

import (
	"context"
	"time"

	"repairdesk/internal/usecase"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const purgeTimeout = 5 * time.Minute

// RecycleBinJob periodically purges appointments that stayed in the
// recycle bin longer than the retention period
type RecycleBinJob struct {
	log               *logrus.Logger
	recycleBinUsecase usecase.RecycleBinUsecase
	retention         time.Duration
	cron              *cron.Cron
}

func NewRecycleBinJob(log *logrus.Logger, recycleBinUsecase usecase.RecycleBinUsecase, retention time.Duration) *RecycleBinJob {
	return &RecycleBinJob{
		log:               log,
		recycleBinUsecase: recycleBinUsecase,
		retention:         retention,
		cron:              cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the purge under the given cron spec ("@every 1h", "0 3 * * *") and starts the scheduler
func (j *RecycleBinJob) Start(spec string) error {
	if _, err := j.cron.AddFunc(spec, j.Run); err != nil {
		return err
	}
	j.cron.Start()
	j.log.Infof("Recycle bin purge scheduled: spec=%s retention=%s", spec, j.retention)
	return nil
}

// Run executes one purge pass
func (j *RecycleBinJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), purgeTimeout)
	defer cancel()

	purged, err := j.recycleBinUsecase.PurgeExpired(ctx, j.retention)
	if err != nil {
		j.log.Warnf("Failed to purge recycle bin: %+v", err)
		return
	}
	if purged > 0 {
		j.log.Infof("Recycle bin purge removed %d appointments", purged)
	}
}

// Stop waits for a running purge to finish
func (j *RecycleBinJob) Stop() {
	<-j.cron.Stop().Done()
}
