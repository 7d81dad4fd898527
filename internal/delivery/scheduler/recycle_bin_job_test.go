package scheduler

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"repairdesk/internal/usecase"

	"github.com/sirupsen/logrus"
)

type fakeRecycleBin struct {
	usecase.RecycleBinUsecase

	calls     int
	retention time.Duration
	err       error
}

func (f *fakeRecycleBin) PurgeExpired(ctx context.Context, retention time.Duration) (int, error) {
	f.calls++
	f.retention = retention
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("expected a deadline")
	}
	return 2, f.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestRecycleBinJobRunPassesRetention(t *testing.T) {
	fake := &fakeRecycleBin{}
	job := NewRecycleBinJob(quietLogger(), fake, 48*time.Hour)

	job.Run()
	fake.err = errors.New("db down")
	job.Run()

	if fake.calls != 2 {
		t.Fatalf("expected 2 purge calls, got %d", fake.calls)
	}
	if fake.retention != 48*time.Hour {
		t.Fatalf("expected retention 48h, got %s", fake.retention)
	}
}

func TestRecycleBinJobRejectsBadSpec(t *testing.T) {
	job := NewRecycleBinJob(quietLogger(), &fakeRecycleBin{}, time.Hour)
	if err := job.Start("every now and then"); err == nil {
		t.Fatal("expected invalid spec error")
	}

	if err := job.Start("@every 1h"); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}
	job.Stop()
}
