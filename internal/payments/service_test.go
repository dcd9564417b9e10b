package payments

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
)

type stubPaymentsRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*models.Payment
	byOrder  map[uuid.UUID]uuid.UUID
}

func newStubPaymentsRepo() *stubPaymentsRepo {
	return &stubPaymentsRepo{
		payments: make(map[uuid.UUID]*models.Payment),
		byOrder:  make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *stubPaymentsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPaymentsRepo) Create(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byOrder[payment.OrderItemID]; exists {
		return nil, errors.New(`duplicate key value violates unique constraint "idx_payments_order_item_id"`)
	}
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	s.payments[payment.ID] = payment
	s.byOrder[payment.OrderItemID] = payment.ID
	return payment, nil
}

func (s *stubPaymentsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *payment
	return &copied, nil
}

func (s *stubPaymentsRepo) List(ctx context.Context, filters ListFilters) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, payment := range s.payments {
		if filters.RetailerID != nil && payment.RetailerID != *filters.RetailerID {
			continue
		}
		if filters.SupplierID != nil && payment.SupplierID != *filters.SupplierID {
			continue
		}
		if filters.Status != nil && payment.Status != *filters.Status {
			continue
		}
		out = append(out, *payment)
	}
	return out, nil
}

func (s *stubPaymentsRepo) ListExpiredLocked(ctx context.Context, now time.Time) ([]models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, payment := range s.payments {
		if payment.Status == enums.PaymentStatusLocked && payment.LockExpiresAt.Before(now) {
			out = append(out, *payment)
		}
	}
	return out, nil
}

func (s *stubPaymentsRepo) ReleaseIfLocked(ctx context.Context, id uuid.UUID, releasedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[id]
	if !ok || payment.Status != enums.PaymentStatusLocked {
		return false, nil
	}
	payment.Status = enums.PaymentStatusReleased
	released := releasedAt
	payment.ReleasedAt = &released
	return true, nil
}

func (s *stubPaymentsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payment, ok := s.payments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["status"].(enums.PaymentStatus); ok {
		payment.Status = v
	}
	if v, ok := updates["dispute_reason"].(string); ok {
		payment.DisputeReason = v
	}
	if v, ok := updates["dispute_raised_at"].(time.Time); ok {
		payment.DisputeRaisedAt = &v
	}
	if v, ok := updates["resolved_at"].(time.Time); ok {
		payment.ResolvedAt = &v
	}
	if v, ok := updates["released_at"].(time.Time); ok {
		payment.ReleasedAt = &v
	}
	if v, ok := updates["notes"].(string); ok {
		payment.Notes = v
	}
	return nil
}

type stubOrderReader struct {
	orders map[uuid.UUID]*models.OrderItem
}

func (s *stubOrderReader) FindByID(ctx context.Context, id uuid.UUID) (*models.OrderItem, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return order, nil
}

type stubRetailers struct {
	byPhone map[string]*models.Retailer
}

func (s *stubRetailers) FindByPhone(ctx context.Context, phone string) (*models.Retailer, error) {
	retailer, ok := s.byPhone[phone]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return retailer, nil
}

type stubPublisher struct {
	mu     sync.Mutex
	events []outbox.DomainEvent
}

func (s *stubPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *stubPublisher) EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.mu.Lock()
	for _, seen := range s.events {
		if seen.EventType == event.EventType && seen.AggregateID == event.AggregateID {
			s.mu.Unlock()
			return nil
		}
	}
	s.mu.Unlock()
	return s.Emit(ctx, tx, event)
}

func (s *stubPublisher) count(eventType enums.OutboxEventType) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, event := range s.events {
		if event.EventType == eventType {
			n++
		}
	}
	return n
}

type passthroughTx struct{}

func (passthroughTx) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type paymentsFixture struct {
	repo      *stubPaymentsRepo
	publisher *stubPublisher
	svc       *service
	orderID   uuid.UUID
	retailer  uuid.UUID
	phone     string
	clock     time.Time
}

func newPaymentsFixture(t *testing.T) *paymentsFixture {
	t.Helper()
	repo := newStubPaymentsRepo()
	publisher := &stubPublisher{}
	orderID := uuid.New()
	retailerID := uuid.New()

	orders := &stubOrderReader{orders: map[uuid.UUID]*models.OrderItem{
		orderID: {
			ID:           orderID,
			RetailerID:   retailerID,
			RetailerName: "Sharma General Store",
			SupplierID:   uuid.New(),
			SupplierName: "ITC Limited",
			TotalAmount:  decimal.NewFromInt(480),
			Status:       enums.OrderItemStatusDelivered,
		},
	}}
	retailers := &stubRetailers{byPhone: map[string]*models.Retailer{
		"+919876543210": {ID: retailerID, Phone: "+919876543210", ShopName: "Sharma General Store"},
		"+919876543211": {ID: uuid.New(), Phone: "+919876543211", ShopName: "Gupta Kirana"},
	}}

	svcIface, err := NewService(repo, orders, retailers, passthroughTx{}, publisher, 48*time.Hour)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	f := &paymentsFixture{
		repo:      repo,
		publisher: publisher,
		svc:       svcIface.(*service),
		orderID:   orderID,
		retailer:  retailerID,
		phone:     "+919876543210",
		clock:     time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *paymentsFixture) record(t *testing.T) *models.Payment {
	t.Helper()
	payment, err := f.svc.Record(context.Background(), RecordPaymentInput{
		OrderItemID: f.orderID,
		Amount:      decimal.NewFromInt(480),
		Method:      "upi",
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}
	return payment
}

func TestRecordPayment(t *testing.T) {
	f := newPaymentsFixture(t)

	payment := f.record(t)
	if payment.Status != enums.PaymentStatusLocked {
		t.Fatalf("status = %s, want locked", payment.Status)
	}
	wantExpiry := f.clock.Add(48 * time.Hour)
	if !payment.LockExpiresAt.Equal(wantExpiry) {
		t.Fatalf("lock_expires_at = %v, want %v", payment.LockExpiresAt, wantExpiry)
	}
	if payment.RetailerID != f.retailer || payment.SupplierName != "ITC Limited" {
		t.Fatalf("order snapshot not denormalized: %+v", payment)
	}
	if f.publisher.count(enums.EventPaymentRecorded) != 1 {
		t.Fatalf("expected one payment_recorded event")
	}
}

func TestRecordPaymentDuplicate(t *testing.T) {
	f := newPaymentsFixture(t)

	f.record(t)
	_, err := f.svc.Record(context.Background(), RecordPaymentInput{
		OrderItemID: f.orderID,
		Amount:      decimal.NewFromInt(480),
		Method:      "cash",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("error = %v, want conflict", err)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		input RecordPaymentInput
	}{
		{"missing order", RecordPaymentInput{Amount: decimal.NewFromInt(10), Method: "upi"}},
		{"zero amount", RecordPaymentInput{OrderItemID: f.orderID, Method: "upi"}},
		{"bad method", RecordPaymentInput{OrderItemID: f.orderID, Amount: decimal.NewFromInt(10), Method: "barter"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Record(ctx, tc.input)
			if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
				t.Fatalf("error = %v, want validation error", err)
			}
		})
	}
}

func TestGetPaymentScopedToOwner(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)

	got, err := f.svc.Get(ctx, f.phone, payment.ID)
	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}
	if got.ID != payment.ID {
		t.Fatalf("payment id = %s, want %s", got.ID, payment.ID)
	}

	_, err = f.svc.Get(ctx, "+919876543211", payment.ID)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("error = %v, want forbidden for another retailer", err)
	}

	// Empty phone is operator access and sees every payment.
	if _, err := f.svc.Get(ctx, "", payment.ID); err != nil {
		t.Fatalf("operator get failed: %v", err)
	}
}

func TestGetPaymentLazyReleasesAfterExpiry(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)
	f.clock = payment.LockExpiresAt.Add(time.Minute)

	got, err := f.svc.Get(ctx, f.phone, payment.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != enums.PaymentStatusReleased {
		t.Fatalf("status = %s after expiry, want released", got.Status)
	}
	if f.publisher.count(enums.EventPaymentReleased) != 1 {
		t.Fatalf("expected one payment_released event")
	}
}

func TestLazyReleaseSweepOnList(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	f.record(t)

	// Still inside the window: listing must not release.
	f.clock = f.clock.Add(47 * time.Hour)
	listed, err := f.svc.List(ctx, ListFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listed[0].Status != enums.PaymentStatusLocked {
		t.Fatalf("status = %s before expiry, want locked", listed[0].Status)
	}

	f.clock = f.clock.Add(2 * time.Hour)
	listed, err = f.svc.List(ctx, ListFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if listed[0].Status != enums.PaymentStatusReleased {
		t.Fatalf("status = %s after expiry, want released", listed[0].Status)
	}
	if listed[0].ReleasedAt == nil {
		t.Fatal("released_at not stamped")
	}

	// A second sweep must not re-release or emit again.
	if _, err := f.svc.List(ctx, ListFilters{}); err != nil {
		t.Fatalf("repeat list failed: %v", err)
	}
	if got := f.publisher.count(enums.EventPaymentReleased); got != 1 {
		t.Fatalf("payment_released events = %d, want 1", got)
	}
}

func TestLazyReleaseIdempotentUnderConcurrentReaders(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	f.record(t)
	f.clock = f.clock.Add(49 * time.Hour)

	const readers = 10
	var wg sync.WaitGroup
	errs := make(chan error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.List(ctx, ListFilters{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent list failed: %v", err)
		}
	}
	if got := f.publisher.count(enums.EventPaymentReleased); got != 1 {
		t.Fatalf("payment_released events = %d, want exactly 1", got)
	}
}

func TestRaiseDisputeBoundary(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)

	// One second before the deadline the dispute goes through.
	f.clock = payment.LockExpiresAt.Add(-time.Second)
	disputed, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "3 units damaged")
	if err != nil {
		t.Fatalf("dispute inside window failed: %v", err)
	}
	if disputed.Status != enums.PaymentStatusDisputed {
		t.Fatalf("status = %s, want disputed", disputed.Status)
	}
	if disputed.DisputeReason != "3 units damaged" || disputed.DisputeRaisedAt == nil {
		t.Fatalf("dispute fields not stamped: %+v", disputed)
	}
	if f.publisher.count(enums.EventPaymentDisputed) != 1 {
		t.Fatalf("expected one payment_disputed event")
	}
}

func TestRaiseDisputeAfterWindow(t *testing.T) {
	f := newPaymentsFixture(t)

	payment := f.record(t)
	f.clock = payment.LockExpiresAt.Add(time.Second)
	_, err := f.svc.RaiseDispute(context.Background(), f.phone, payment.ID, "late complaint")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeWindowExpired {
		t.Fatalf("error = %v, want window expired", err)
	}
}

func TestRaiseDisputeAtExactDeadline(t *testing.T) {
	f := newPaymentsFixture(t)

	payment := f.record(t)
	f.clock = payment.LockExpiresAt
	_, err := f.svc.RaiseDispute(context.Background(), f.phone, payment.ID, "on the line")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeWindowExpired {
		t.Fatalf("error = %v, want window expired at the exact deadline", err)
	}
}

func TestRaiseDisputeOwnerOnly(t *testing.T) {
	f := newPaymentsFixture(t)

	payment := f.record(t)
	_, err := f.svc.RaiseDispute(context.Background(), "+919876543211", payment.ID, "not my payment")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("error = %v, want forbidden", err)
	}
}

func TestRaiseDisputeRequiresLocked(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)
	f.clock = payment.LockExpiresAt.Add(-time.Hour)
	if _, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "first dispute"); err != nil {
		t.Fatalf("first dispute failed: %v", err)
	}
	_, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "second dispute")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want state conflict", err)
	}
}

func TestResolveDisputeReleased(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)
	f.clock = payment.LockExpiresAt.Add(-time.Hour)
	if _, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "short delivery"); err != nil {
		t.Fatalf("dispute failed: %v", err)
	}

	resolved, err := f.svc.Resolve(ctx, payment.ID, "verified with supplier, goods complete", false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != enums.PaymentStatusReleased {
		t.Fatalf("status = %s, want released", resolved.Status)
	}
	if resolved.ReleasedAt == nil || resolved.ResolvedAt == nil {
		t.Fatalf("timestamps not stamped: %+v", resolved)
	}
	if resolved.Notes != "verified with supplier, goods complete" {
		t.Fatalf("notes = %q", resolved.Notes)
	}
	if f.publisher.count(enums.EventDisputeResolved) != 1 {
		t.Fatalf("expected one dispute_resolved event")
	}
}

func TestResolveDisputeRefunded(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)
	f.clock = payment.LockExpiresAt.Add(-time.Hour)
	if _, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "goods damaged"); err != nil {
		t.Fatalf("dispute failed: %v", err)
	}

	resolved, err := f.svc.Resolve(ctx, payment.ID, "refund approved", true)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Status != enums.PaymentStatusRefunded {
		t.Fatalf("status = %s, want refunded", resolved.Status)
	}
	if resolved.ReleasedAt != nil {
		t.Fatal("refund must not stamp released_at")
	}
}

func TestResolveRequiresDisputed(t *testing.T) {
	f := newPaymentsFixture(t)

	payment := f.record(t)
	_, err := f.svc.Resolve(context.Background(), payment.ID, "nothing to resolve", false)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want state conflict", err)
	}
}

func TestResolveAppendsToExistingNotes(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)
	f.repo.payments[payment.ID].Notes = "collected at shop"
	f.clock = payment.LockExpiresAt.Add(-time.Hour)
	if _, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "amount mismatch"); err != nil {
		t.Fatalf("dispute failed: %v", err)
	}

	resolved, err := f.svc.Resolve(ctx, payment.ID, "adjusted and released", false)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if resolved.Notes != "collected at shop\nadjusted and released" {
		t.Fatalf("notes = %q, want appended", resolved.Notes)
	}
}

func TestReleasedPaymentIsTerminal(t *testing.T) {
	f := newPaymentsFixture(t)
	ctx := context.Background()

	payment := f.record(t)
	f.clock = payment.LockExpiresAt.Add(time.Hour)
	if _, err := f.svc.List(ctx, ListFilters{}); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	_, err := f.svc.RaiseDispute(ctx, f.phone, payment.ID, "too late")
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want state conflict on released payment", err)
	}
	_, err = f.svc.Resolve(ctx, payment.ID, "note", true)
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("error = %v, want state conflict on released payment", err)
	}
}
