package cron

import (
	"context"
	"fmt"

	"github.com/kunalverma/groupbuy-backend/pkg/logger"
)

// PaymentReleaseJobParams configure the scheduled payment release sweep.
type PaymentReleaseJobParams struct {
	Logger   *logger.Logger
	Payments paymentSweeper
}

type paymentSweeper interface {
	SweepExpired(ctx context.Context) error
}

// NewPaymentReleaseJob builds the job that releases locked payments whose
// dispute window has lapsed. The read path runs the same sweep lazily; this
// job bounds how stale an untouched payment can get.
func NewPaymentReleaseJob(params PaymentReleaseJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments sweeper required")
	}
	return &paymentReleaseJob{
		logg:     params.Logger,
		payments: params.Payments,
	}, nil
}

type paymentReleaseJob struct {
	logg     *logger.Logger
	payments paymentSweeper
}

func (j *paymentReleaseJob) Name() string { return "payment-release" }

func (j *paymentReleaseJob) Run(ctx context.Context) error {
	if err := j.payments.SweepExpired(ctx); err != nil {
		return fmt.Errorf("payment release sweep: %w", err)
	}
	j.logg.Info(ctx, "payment release sweep complete")
	return nil
}
