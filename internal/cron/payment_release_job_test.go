package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/kunalverma/groupbuy-backend/pkg/logger"
)

type fakePaymentSweeper struct {
	called int
	err    error
}

func (f *fakePaymentSweeper) SweepExpired(ctx context.Context) error {
	f.called++
	return f.err
}

func TestPaymentReleaseJobRunsSweep(t *testing.T) {
	sweeper := &fakePaymentSweeper{}
	job, err := NewPaymentReleaseJob(PaymentReleaseJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: sweeper,
	})
	if err != nil {
		t.Fatalf("NewPaymentReleaseJob: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.called != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.called)
	}
}

func TestPaymentReleaseJobPropagatesError(t *testing.T) {
	sweeper := &fakePaymentSweeper{err: errors.New("boom")}
	job, err := NewPaymentReleaseJob(PaymentReleaseJobParams{
		Logger:   logger.New(logger.Options{ServiceName: "test"}),
		Payments: sweeper,
	})
	if err != nil {
		t.Fatalf("NewPaymentReleaseJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
