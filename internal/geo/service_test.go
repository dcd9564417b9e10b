package geo

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

type stubZoneRepo struct {
	zones       []models.Zone
	created     []*models.Zone
	incremented []uuid.UUID
}

func (s *stubZoneRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubZoneRepo) Create(ctx context.Context, zone *models.Zone) (*models.Zone, error) {
	if zone.ID == uuid.Nil {
		zone.ID = uuid.New()
	}
	s.created = append(s.created, zone)
	return zone, nil
}

func (s *stubZoneRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Zone, error) {
	for i := range s.zones {
		if s.zones[i].ID == id {
			return &s.zones[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubZoneRepo) ListActive(ctx context.Context) ([]models.Zone, error) {
	return s.zones, nil
}

func (s *stubZoneRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error) {
	var out []models.Zone
	for _, zone := range s.zones {
		for _, id := range ids {
			if zone.ID == id {
				out = append(out, zone)
			}
		}
	}
	return out, nil
}

func (s *stubZoneRepo) IncrementRetailerCounts(ctx context.Context, ids []uuid.UUID) error {
	s.incremented = append(s.incremented, ids...)
	return nil
}

func (s *stubZoneRepo) Deactivate(ctx context.Context, id uuid.UUID) error { return nil }

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

func TestDistanceKm(t *testing.T) {
	mumbai := types.Location{Latitude: 19.0760, Longitude: 72.8777}
	pune := types.Location{Latitude: 18.5204, Longitude: 73.8567}
	d := DistanceKm(mumbai, pune)
	if d < 115 || d > 125 {
		t.Fatalf("expected roughly 120km got %f", d)
	}
	if DistanceKm(mumbai, mumbai) != 0 {
		t.Fatal("expected zero distance for identical points")
	}
}

func TestAssignZonesMatchesCoveringZones(t *testing.T) {
	near := models.Zone{
		ID:       uuid.New(),
		Name:     "Andheri",
		Center:   types.Location{Latitude: 19.1136, Longitude: 72.8697},
		RadiusKm: 5,
		IsActive: true,
	}
	far := models.Zone{
		ID:       uuid.New(),
		Name:     "Pune Camp",
		Center:   types.Location{Latitude: 18.5204, Longitude: 73.8567},
		RadiusKm: 5,
		IsActive: true,
	}
	repo := &stubZoneRepo{zones: []models.Zone{near, far}}
	publisher := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, publisher, 5)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	ids, err := svc.AssignZones(context.Background(), nil, types.Location{Latitude: 19.1197, Longitude: 72.8464}, "Sharma Kirana")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(ids) != 1 || ids[0] != near.ID {
		t.Fatalf("expected only the nearby zone, got %v", ids)
	}
	if len(repo.incremented) != 1 || repo.incremented[0] != near.ID {
		t.Fatalf("expected retailer count bump for matched zone, got %v", repo.incremented)
	}
	if len(repo.created) != 0 {
		t.Fatal("no zone should be created when one matches")
	}
}

func TestAssignZonesCreatesZoneWhenNoneCover(t *testing.T) {
	repo := &stubZoneRepo{}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher, 5)

	loc := types.Location{Latitude: 28.6139, Longitude: 77.2090}
	ids, err := svc.AssignZones(context.Background(), nil, loc, "Gupta General Store")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected one auto-created zone got %d", len(repo.created))
	}
	created := repo.created[0]
	if len(ids) != 1 || ids[0] != created.ID {
		t.Fatalf("expected assignment to the new zone, got %v", ids)
	}
	if created.Name != "Zone-Gupta Gene" {
		t.Fatalf("unexpected zone name %q", created.Name)
	}
	if created.RadiusKm != 5 {
		t.Fatalf("expected default radius got %f", created.RadiusKm)
	}
	if created.RetailerCount != 1 {
		t.Fatalf("expected retailer count 1 got %d", created.RetailerCount)
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != enums.EventZoneCreated {
		t.Fatalf("expected zone_created event, got %+v", publisher.events)
	}
}

func TestAssignZonesSkipsMalformedCenters(t *testing.T) {
	broken := models.Zone{
		ID:       uuid.New(),
		Name:     "Broken",
		Center:   types.Location{Latitude: 512, Longitude: 72.88},
		RadiusKm: 5,
		IsActive: true,
	}
	ok := models.Zone{
		ID:       uuid.New(),
		Name:     "Bandra",
		Center:   types.Location{Latitude: 19.0596, Longitude: 72.8295},
		RadiusKm: 5,
		IsActive: true,
	}
	repo := &stubZoneRepo{zones: []models.Zone{broken, ok}}
	svc, _ := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{}, 5)

	ids, err := svc.AssignZones(context.Background(), nil, types.Location{Latitude: 19.0607, Longitude: 72.8362}, "Khan Stores")
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if len(ids) != 1 || ids[0] != ok.ID {
		t.Fatalf("expected malformed zone skipped, got %v", ids)
	}
}

func TestAssignZonesRejectsInvalidLocation(t *testing.T) {
	svc, _ := NewService(&stubZoneRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, 5)
	_, err := svc.AssignZones(context.Background(), nil, types.Location{Latitude: 91, Longitude: 0}, "X")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestCreateZoneValidates(t *testing.T) {
	svc, _ := NewService(&stubZoneRepo{}, stubTxRunner{}, &stubOutboxPublisher{}, 5)
	_, err := svc.CreateZone(context.Background(), CreateZoneInput{Center: types.Location{Latitude: 10, Longitude: 10}})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestCreateZoneDefaultsRadius(t *testing.T) {
	repo := &stubZoneRepo{}
	publisher := &stubOutboxPublisher{}
	svc, _ := NewService(repo, stubTxRunner{}, publisher, 5)

	zone, err := svc.CreateZone(context.Background(), CreateZoneInput{
		Name:   "Dadar West",
		Center: types.Location{Latitude: 19.0178, Longitude: 72.8478},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if zone.RadiusKm != 5 {
		t.Fatalf("expected default radius got %f", zone.RadiusKm)
	}
	if len(publisher.events) != 1 {
		t.Fatal("expected zone_created event")
	}
}
