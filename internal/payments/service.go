package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	dbpkg "github.com/kunalverma/groupbuy-backend/pkg/db"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// OrderReader resolves the order an admin is recording a payment against.
type OrderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error)
}

// RetailerReader resolves the authenticated phone to a retailer row.
type RetailerReader interface {
	FindByPhone(ctx context.Context, phone string) (*models.Retailer, error)
}

// Service is the payment lock/dispute engine. A payment is locked for a fixed
// window after recording, auto-releases once the window lapses and can be
// disputed by the owning retailer strictly inside the window. Released and
// refunded are terminal.
type Service interface {
	Record(ctx context.Context, input RecordPaymentInput) (*models.Payment, error)
	Get(ctx context.Context, phone string, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context, filters ListFilters) ([]models.Payment, error)
	ListMine(ctx context.Context, phone string) ([]models.Payment, error)
	SweepExpired(ctx context.Context) error
	RaiseDispute(ctx context.Context, phone string, paymentID uuid.UUID, reason string) (*models.Payment, error)
	Resolve(ctx context.Context, paymentID uuid.UUID, note string, refund bool) (*models.Payment, error)
}

type service struct {
	repo       Repository
	orders     OrderReader
	retailers  RetailerReader
	tx         txRunner
	outbox     outboxPublisher
	lockWindow time.Duration
	now        func() time.Time
}

// NewService builds the payment engine. lockWindow is how long a recorded
// payment stays disputable before auto-release.
func NewService(repo Repository, orders OrderReader, retailers RetailerReader, tx txRunner, publisher outboxPublisher, lockWindow time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if retailers == nil {
		return nil, fmt.Errorf("retailer reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if lockWindow <= 0 {
		return nil, fmt.Errorf("lock window must be positive")
	}
	return &service{
		repo:       repo,
		orders:     orders,
		retailers:  retailers,
		tx:         tx,
		outbox:     publisher,
		lockWindow: lockWindow,
		now:        time.Now,
	}, nil
}

func (s *service) Record(ctx context.Context, input RecordPaymentInput) (*models.Payment, error) {
	if input.OrderItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	method, err := enums.ParsePaymentMethod(input.Method)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	order, err := s.orders.FindByID(ctx, input.OrderItemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	now := s.now()
	payment := &models.Payment{
		OrderItemID:     order.ID,
		RetailerID:      order.RetailerID,
		RetailerName:    order.RetailerName,
		SupplierID:      order.SupplierID,
		SupplierName:    order.SupplierName,
		Amount:          input.Amount,
		Method:          method,
		ReferenceNumber: input.ReferenceNumber,
		Status:          enums.PaymentStatusLocked,
		LockExpiresAt:   now.Add(s.lockWindow),
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "payment already recorded for this order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentRecorded,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Data: PaymentRecordedEvent{
				PaymentID:     payment.ID,
				OrderItemID:   order.ID,
				RetailerID:    order.RetailerID,
				SupplierName:  order.SupplierName,
				Amount:        payment.Amount,
				Method:        string(method),
				LockExpiresAt: payment.LockExpiresAt,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// Get returns a single payment scoped to the calling retailer. An empty phone
// is operator access and skips the ownership check.
func (s *service) Get(ctx context.Context, phone string, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if phone != "" {
		retailer, err := s.retailers.FindByPhone(ctx, phone)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
		}
		if payment.RetailerID != retailer.ID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to a different retailer")
		}
	}
	if released, err := s.releaseIfExpired(ctx, payment); err != nil {
		return nil, err
	} else if released {
		return s.load(ctx, id)
	}
	return payment, nil
}

// List runs the lazy release sweep before returning, so no caller ever
// observes a payment still locked past its deadline.
func (s *service) List(ctx context.Context, filters ListFilters) ([]models.Payment, error) {
	if err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}
	payments, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return payments, nil
}

func (s *service) ListMine(ctx context.Context, phone string) ([]models.Payment, error) {
	retailer, err := s.retailers.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	return s.List(ctx, ListFilters{RetailerID: &retailer.ID})
}

// SweepExpired releases every locked payment whose window has lapsed. The
// per-payment release is conditioned on the row still being locked, so
// concurrent sweeps are idempotent. Shared by the read path and the cron job.
// A failed release does not stop the sweep; errors are combined at the end.
func (s *service) SweepExpired(ctx context.Context) error {
	now := s.now()
	expired, err := s.repo.ListExpiredLocked(ctx, now)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired payments")
	}
	var errs []error
	for _, payment := range expired {
		if _, err := s.releaseIfExpired(ctx, &payment); err != nil {
			errs = append(errs, fmt.Errorf("release payment %s: %w", payment.ID, err))
		}
	}
	return multierr.Combine(errs...)
}

func (s *service) releaseIfExpired(ctx context.Context, payment *models.Payment) (bool, error) {
	now := s.now()
	if payment.Status != enums.PaymentStatusLocked || !payment.LockExpiresAt.Before(now) {
		return false, nil
	}
	var won bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		won, err = s.repo.WithTx(tx).ReleaseIfLocked(ctx, payment.ID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release payment")
		}
		if !won {
			return nil
		}
		// The lazy read path and the cron sweep can both reach a payment
		// in the same window; the outbox guard keeps the event single.
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentReleased,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Data: PaymentReleasedEvent{
				PaymentID:  payment.ID,
				RetailerID: payment.RetailerID,
				Amount:     payment.Amount,
				ReleasedAt: now,
			},
		})
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func (s *service) RaiseDispute(ctx context.Context, phone string, paymentID uuid.UUID, reason string) (*models.Payment, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dispute reason required")
	}
	retailer, err := s.retailers.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	payment, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.RetailerID != retailer.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment belongs to a different retailer")
	}
	if payment.Status != enums.PaymentStatusLocked {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not locked")
	}
	now := s.now()
	if !now.Before(payment.LockExpiresAt) {
		return nil, pkgerrors.New(pkgerrors.CodeWindowExpired, "dispute window has expired")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, payment.ID, map[string]any{
			"status":            enums.PaymentStatusDisputed,
			"dispute_reason":    reason,
			"dispute_raised_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment disputed")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentDisputed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{RetailerID: &retailer.ID, Phone: retailer.Phone},
			Data: PaymentDisputedEvent{
				PaymentID:    payment.ID,
				RetailerID:   retailer.ID,
				RetailerName: retailer.ShopName,
				Amount:       payment.Amount,
				Reason:       reason,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, paymentID)
}

func (s *service) Resolve(ctx context.Context, paymentID uuid.UUID, note string, refund bool) (*models.Payment, error) {
	payment, err := s.load(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != enums.PaymentStatusDisputed {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment is not disputed")
	}

	now := s.now()
	resolution := enums.PaymentStatusReleased
	if refund {
		resolution = enums.PaymentStatusRefunded
	}
	updates := map[string]any{
		"status":      resolution,
		"resolved_at": now,
		"notes":       appendNote(payment.Notes, note),
	}
	if !refund {
		updates["released_at"] = now
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve payment")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventDisputeResolved,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Data: DisputeResolvedEvent{
				PaymentID:  payment.ID,
				RetailerID: payment.RetailerID,
				Resolution: resolution,
				Note:       note,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, paymentID)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

func appendNote(existing, note string) string {
	note = strings.TrimSpace(note)
	if note == "" {
		return existing
	}
	if existing == "" {
		return note
	}
	return existing + "\n" + note
}
