package geo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes zone assignment and zone management.
type Service interface {
	AssignZones(ctx context.Context, tx *gorm.DB, location types.Location, shopName string) ([]uuid.UUID, error)
	CreateZone(ctx context.Context, input CreateZoneInput) (*models.Zone, error)
	ListActive(ctx context.Context) ([]models.Zone, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error)
}

type service struct {
	repo            Repository
	tx              txRunner
	outbox          outboxPublisher
	defaultRadiusKm float64
}

// CreateZoneInput carries the fields admins supply when drawing a zone by hand.
type CreateZoneInput struct {
	Name     string
	Center   types.Location
	RadiusKm float64
}

// ZoneCreatedEvent is emitted when a zone is created, either by an admin or
// automatically during retailer registration.
type ZoneCreatedEvent struct {
	ZoneID   uuid.UUID      `json:"zone_id"`
	Name     string         `json:"name"`
	Center   types.Location `json:"center"`
	RadiusKm float64        `json:"radius_km"`
	Auto     bool           `json:"auto"`
}

// NewService builds a zone service with the required dependencies.
func NewService(repo Repository, tx txRunner, publisher outboxPublisher, defaultRadiusKm float64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("zone repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if defaultRadiusKm <= 0 {
		defaultRadiusKm = 5
	}
	return &service{
		repo:            repo,
		tx:              tx,
		outbox:          publisher,
		defaultRadiusKm: defaultRadiusKm,
	}, nil
}

// AssignZones resolves every active zone covering the location. When no zone
// covers it a fresh zone is created centered on the shop so the retailer is
// never left zoneless. Runs inside the caller's registration transaction.
func (s *service) AssignZones(ctx context.Context, tx *gorm.DB, location types.Location, shopName string) ([]uuid.UUID, error) {
	if !location.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location out of range")
	}

	repo := s.repo.WithTx(tx)
	zones, err := repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active zones")
	}

	var matched []uuid.UUID
	for _, zone := range zones {
		// Zones with out-of-range centers are skipped rather than failing
		// the whole registration.
		if !zone.Center.Valid() {
			continue
		}
		if DistanceKm(location, zone.Center) <= zone.RadiusKm {
			matched = append(matched, zone.ID)
		}
	}

	if len(matched) > 0 {
		if err := repo.IncrementRetailerCounts(ctx, matched); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment zone retailer counts")
		}
		return matched, nil
	}

	zone := &models.Zone{
		Name:          autoZoneName(shopName),
		Center:        location,
		RadiusKm:      s.defaultRadiusKm,
		RetailerCount: 1,
		IsActive:      true,
	}
	if _, err := repo.Create(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create zone")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventZoneCreated,
		AggregateType: enums.AggregateZone,
		AggregateID:   zone.ID,
		Version:       1,
		Data: ZoneCreatedEvent{
			ZoneID:   zone.ID,
			Name:     zone.Name,
			Center:   zone.Center,
			RadiusKm: zone.RadiusKm,
			Auto:     true,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return nil, err
	}

	return []uuid.UUID{zone.ID}, nil
}

func (s *service) CreateZone(ctx context.Context, input CreateZoneInput) (*models.Zone, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone name required")
	}
	if !input.Center.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "zone center out of range")
	}
	radius := input.RadiusKm
	if radius <= 0 {
		radius = s.defaultRadiusKm
	}

	var created *models.Zone
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		zone := &models.Zone{
			Name:     input.Name,
			Center:   input.Center,
			RadiusKm: radius,
			IsActive: true,
		}
		if _, err := repo.Create(ctx, zone); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create zone")
		}
		created = zone
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventZoneCreated,
			AggregateType: enums.AggregateZone,
			AggregateID:   zone.ID,
			Version:       1,
			Data: ZoneCreatedEvent{
				ZoneID:   zone.ID,
				Name:     zone.Name,
				Center:   zone.Center,
				RadiusKm: zone.RadiusKm,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) ListActive(ctx context.Context) ([]models.Zone, error) {
	zones, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list zones")
	}
	return zones, nil
}

func (s *service) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error) {
	zones, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list zones")
	}
	return zones, nil
}

func autoZoneName(shopName string) string {
	runes := []rune(shopName)
	if len(runes) > 10 {
		runes = runes[:10]
	}
	return fmt.Sprintf("Zone-%s", string(runes))
}
