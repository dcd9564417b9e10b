package offers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
)

type stubOffersRepo struct {
	offers        map[uuid.UUID]*models.SupplierOffer
	cascaded      []enums.OrderItemStatus
	orderRetailer []uuid.UUID
}

func newStubOffersRepo() *stubOffersRepo {
	return &stubOffersRepo{offers: make(map[uuid.UUID]*models.SupplierOffer)}
}

func (s *stubOffersRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubOffersRepo) Create(ctx context.Context, offer *models.SupplierOffer) (*models.SupplierOffer, error) {
	if offer.ID == uuid.Nil {
		offer.ID = uuid.New()
	}
	s.offers[offer.ID] = offer
	return offer, nil
}

func (s *stubOffersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SupplierOffer, error) {
	offer, ok := s.offers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return offer, nil
}

func (s *stubOffersRepo) OpenOfferExists(ctx context.Context, productID, supplierID, zoneID uuid.UUID) (bool, error) {
	for _, offer := range s.offers {
		if offer.ProductID == productID && offer.SupplierID == supplierID && offer.ZoneID == zoneID &&
			offer.Status == enums.OfferStatusOpen && offer.IsActive {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubOffersRepo) ListAcceptingByZone(ctx context.Context, zoneID uuid.UUID) ([]models.SupplierOffer, error) {
	var out []models.SupplierOffer
	for _, offer := range s.offers {
		if offer.ZoneID == zoneID && offer.IsActive && offer.Status.AcceptsOrders() {
			out = append(out, *offer)
		}
	}
	return out, nil
}

func (s *stubOffersRepo) List(ctx context.Context, filters ListFilters) ([]models.SupplierOffer, error) {
	var out []models.SupplierOffer
	for _, offer := range s.offers {
		out = append(out, *offer)
	}
	return out, nil
}

func (s *stubOffersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	offer, ok := s.offers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["min_fulfillment_qty"].(int); ok {
		offer.MinFulfillmentQty = v
	}
	if v, ok := updates["is_active"].(bool); ok {
		offer.IsActive = v
	}
	return nil
}

func (s *stubOffersRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OfferStatus) error {
	offer, ok := s.offers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	offer.Status = status
	return nil
}

func (s *stubOffersRepo) CascadeStatusToOrders(ctx context.Context, offerID uuid.UUID, status enums.OrderItemStatus) error {
	s.cascaded = append(s.cascaded, status)
	return nil
}

func (s *stubOffersRepo) DistinctOrderRetailers(ctx context.Context, offerID uuid.UUID) ([]uuid.UUID, error) {
	return s.orderRetailer, nil
}

type stubCatalogReader struct {
	products  map[uuid.UUID]*models.Product
	suppliers map[uuid.UUID]*models.Supplier
}

func (s *stubCatalogReader) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *stubCatalogReader) GetSupplier(ctx context.Context, id uuid.UUID) (*models.Supplier, error) {
	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
	}
	return supplier, nil
}

type stubZoneReader struct {
	zones map[uuid.UUID]models.Zone
}

func (s *stubZoneReader) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error) {
	var out []models.Zone
	for _, id := range ids {
		if zone, ok := s.zones[id]; ok {
			out = append(out, zone)
		}
	}
	return out, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type offersFixture struct {
	repo      *stubOffersRepo
	publisher *stubOutboxPublisher
	svc       Service
	productID uuid.UUID
	supplier  uuid.UUID
	zoneID    uuid.UUID
}

func newOffersFixture(t *testing.T) *offersFixture {
	t.Helper()
	productID := uuid.New()
	supplierID := uuid.New()
	zoneID := uuid.New()
	repo := newStubOffersRepo()
	publisher := &stubOutboxPublisher{}
	catalog := &stubCatalogReader{
		products: map[uuid.UUID]*models.Product{
			productID: {ID: productID, Name: "Aashirvaad Atta", Brand: "Aashirvaad", Unit: "kg", Category: "Grocery", IsActive: true},
		},
		suppliers: map[uuid.UUID]*models.Supplier{
			supplierID: {ID: supplierID, Name: "ITC Limited", Code: "ITC", IsActive: true},
		},
	}
	zones := &stubZoneReader{
		zones: map[uuid.UUID]models.Zone{
			zoneID: {ID: zoneID, Name: "Andheri", IsActive: true},
		},
	}
	svc, err := NewService(repo, catalog, zones, stubTxRunner{}, publisher)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return &offersFixture{
		repo:      repo,
		publisher: publisher,
		svc:       svc,
		productID: productID,
		supplier:  supplierID,
		zoneID:    zoneID,
	}
}

func (f *offersFixture) validCreateInput() CreateOfferInput {
	max := 99
	return CreateOfferInput{
		ProductID:  f.productID,
		SupplierID: f.supplier,
		ZoneID:     f.zoneID,
		QuantitySlabs: []SlabInput{
			{MinQty: 0, MaxQty: &max, PricePerUnit: 10},
			{MinQty: 100, PricePerUnit: 8},
		},
		MinFulfillmentQty: 100,
		LeadTimeDays:      3,
	}
}

func TestCreateOffer(t *testing.T) {
	f := newOffersFixture(t)
	offer, err := f.svc.Create(context.Background(), f.validCreateInput())
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if offer.ProductName != "Aashirvaad Atta" || offer.SupplierCode != "ITC" {
		t.Fatalf("expected denormalized catalog names, got %+v", offer)
	}
	if offer.Status != enums.OfferStatusOpen {
		t.Fatalf("expected open status got %s", offer.Status)
	}
	if !offer.CurrentPricePerUnit.Equal(offer.QuantitySlabs[0].PricePerUnit) {
		t.Fatalf("expected initial price from first slab got %s", offer.CurrentPricePerUnit)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0].EventType != enums.EventOfferCreated {
		t.Fatalf("expected offer_created event, got %+v", f.publisher.events)
	}
}

func TestCreateOfferDuplicateOpen(t *testing.T) {
	f := newOffersFixture(t)
	if _, err := f.svc.Create(context.Background(), f.validCreateInput()); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := f.svc.Create(context.Background(), f.validCreateInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict got %v", err)
	}
}

func TestCreateOfferRejectsBadSlabs(t *testing.T) {
	f := newOffersFixture(t)
	input := f.validCreateInput()
	input.QuantitySlabs = nil
	_, err := f.svc.Create(context.Background(), input)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}

	input = f.validCreateInput()
	lower := 5
	input.QuantitySlabs = []SlabInput{{MinQty: 10, MaxQty: &lower, PricePerUnit: 10}}
	_, err = f.svc.Create(context.Background(), input)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestTransitionStatusForwardCascades(t *testing.T) {
	f := newOffersFixture(t)
	offer, _ := f.svc.Create(context.Background(), f.validCreateInput())
	offer.Status = enums.OfferStatusReadyToPack

	updated, err := f.svc.TransitionStatus(context.Background(), offer.ID, "picked_up")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if updated.Status != enums.OfferStatusPickedUp {
		t.Fatalf("expected picked_up got %s", updated.Status)
	}
	if len(f.repo.cascaded) != 1 || f.repo.cascaded[0] != enums.OrderItemStatusPickedUp {
		t.Fatalf("expected order cascade, got %v", f.repo.cascaded)
	}
	last := f.publisher.events[len(f.publisher.events)-1]
	if last.EventType != enums.EventOfferStatusChanged {
		t.Fatalf("expected offer_status_changed event got %s", last.EventType)
	}
}

func TestTransitionStatusRejectsBackward(t *testing.T) {
	f := newOffersFixture(t)
	offer, _ := f.svc.Create(context.Background(), f.validCreateInput())
	offer.Status = enums.OfferStatusOutForDelivery

	_, err := f.svc.TransitionStatus(context.Background(), offer.ID, "ready_to_pack")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict got %v", err)
	}
}

func TestTransitionStatusRejectsUnknownBeforeMutation(t *testing.T) {
	f := newOffersFixture(t)
	offer, _ := f.svc.Create(context.Background(), f.validCreateInput())

	_, err := f.svc.TransitionStatus(context.Background(), offer.ID, "fulfilled")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
	if f.repo.offers[offer.ID].Status != enums.OfferStatusOpen {
		t.Fatal("offer mutated despite invalid status")
	}
}

func TestListZoneOffersProgress(t *testing.T) {
	f := newOffersFixture(t)
	offer, _ := f.svc.Create(context.Background(), f.validCreateInput())
	offer.CurrentAggregatedQty = 50

	details, err := f.svc.ListZoneOffers(context.Background(), f.zoneID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected one offer got %d", len(details))
	}
	if details[0].ZoneName != "Andheri" {
		t.Fatalf("expected zone name got %q", details[0].ZoneName)
	}
	if details[0].ProgressPercentage != 50 {
		t.Fatalf("expected 50%% progress got %f", details[0].ProgressPercentage)
	}
}

func TestProgressCapsAtHundred(t *testing.T) {
	if Progress(250, 100) != 100 {
		t.Fatal("expected capped progress")
	}
	if Progress(10, 0) != 0 {
		t.Fatal("expected zero progress when threshold unset")
	}
}
