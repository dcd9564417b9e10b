package retailers

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/kunalverma/groupbuy-backend/pkg/db"
	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	"github.com/kunalverma/groupbuy-backend/pkg/enums"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/outbox"
	"github.com/kunalverma/groupbuy-backend/pkg/pagination"
	"github.com/kunalverma/groupbuy-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ZoneAssigner resolves zone membership for a shop location inside the
// registration transaction.
type ZoneAssigner interface {
	AssignZones(ctx context.Context, tx *gorm.DB, location types.Location, shopName string) ([]uuid.UUID, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Zone, error)
}

// Service defines retailer profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Profile, error)
	Me(ctx context.Context, phone string) (*Profile, error)
	UpdateProfile(ctx context.Context, phone string, input UpdateInput) (*Profile, error)
	MyZones(ctx context.Context, phone string) ([]models.Zone, error)
	List(ctx context.Context, params pagination.Params) ([]models.Retailer, *pagination.Cursor, error)
	ZoneIDsFor(ctx context.Context, retailerID uuid.UUID) ([]uuid.UUID, error)
}

type service struct {
	repo   Repository
	zones  ZoneAssigner
	tx     txRunner
	outbox outboxPublisher
}

// RegisterInput captures a new retailer registration. TokenPhone is the phone
// proven by OTP; Phone is what the caller claims and the two must match.
type RegisterInput struct {
	TokenPhone string
	Phone      string
	Name       string
	ShopName   string
	Address    string
	Location   types.Location
}

// UpdateInput carries optional profile fields. Zone membership is fixed at
// registration and is deliberately absent here.
type UpdateInput struct {
	Name     *string
	ShopName *string
	Address  *string
	Location *types.Location
}

// Profile is a retailer together with the zones assigned at registration.
type Profile struct {
	Retailer models.Retailer `json:"retailer"`
	ZoneIDs  []uuid.UUID     `json:"zone_ids"`
}

// RetailerRegisteredEvent is emitted when a retailer completes registration.
type RetailerRegisteredEvent struct {
	RetailerID uuid.UUID   `json:"retailer_id"`
	Phone      string      `json:"phone"`
	ShopName   string      `json:"shop_name"`
	ZoneIDs    []uuid.UUID `json:"zone_ids"`
}

// NewService builds a retailer service with the required dependencies.
func NewService(repo Repository, zones ZoneAssigner, tx txRunner, publisher outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("retailer repository required")
	}
	if zones == nil {
		return nil, fmt.Errorf("zone assigner required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if publisher == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, zones: zones, tx: tx, outbox: publisher}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Profile, error) {
	if input.Phone == "" || input.Name == "" || input.ShopName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone, name and shop name required")
	}
	if input.Phone != input.TokenPhone {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone does not match authenticated user")
	}
	if !input.Location.Valid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "location out of range")
	}

	var profile *Profile
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		retailer := &models.Retailer{
			Phone:    input.Phone,
			Name:     input.Name,
			ShopName: input.ShopName,
			Address:  input.Address,
			Location: input.Location,
			IsActive: true,
		}
		if _, err := repo.Create(ctx, retailer); err != nil {
			if dbpkg.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "retailer already registered")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create retailer")
		}

		zoneIDs, err := s.zones.AssignZones(ctx, tx, input.Location, input.ShopName)
		if err != nil {
			return err
		}
		if err := repo.LinkZones(ctx, retailer.ID, zoneIDs); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link retailer zones")
		}

		profile = &Profile{Retailer: *retailer, ZoneIDs: zoneIDs}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventRetailerRegistered,
			AggregateType: enums.AggregateRetailer,
			AggregateID:   retailer.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{RetailerID: &retailer.ID, Phone: retailer.Phone},
			Data: RetailerRegisteredEvent{
				RetailerID: retailer.ID,
				Phone:      retailer.Phone,
				ShopName:   retailer.ShopName,
				ZoneIDs:    zoneIDs,
			},
		})
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *service) Me(ctx context.Context, phone string) (*Profile, error) {
	retailer, err := s.findByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	zoneIDs, err := s.repo.ZoneIDs(ctx, retailer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer zones")
	}
	return &Profile{Retailer: *retailer, ZoneIDs: zoneIDs}, nil
}

// UpdateProfile edits profile fields in place. A changed location does not
// re-run zone assignment; membership stays as computed at registration.
func (s *service) UpdateProfile(ctx context.Context, phone string, input UpdateInput) (*Profile, error) {
	retailer, err := s.findByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.ShopName != nil {
		updates["shop_name"] = *input.ShopName
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.Location != nil {
		if !input.Location.Valid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "location out of range")
		}
		updates["location_latitude"] = input.Location.Latitude
		updates["location_longitude"] = input.Location.Longitude
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, retailer.ID, updates); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update retailer")
		}
	}
	return s.Me(ctx, phone)
}

func (s *service) MyZones(ctx context.Context, phone string) ([]models.Zone, error) {
	retailer, err := s.findByPhone(ctx, phone)
	if err != nil {
		return nil, err
	}
	zoneIDs, err := s.repo.ZoneIDs(ctx, retailer.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer zones")
	}
	return s.zones.ListByIDs(ctx, zoneIDs)
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]models.Retailer, *pagination.Cursor, error) {
	return s.repo.List(ctx, params)
}

func (s *service) ZoneIDsFor(ctx context.Context, retailerID uuid.UUID) ([]uuid.UUID, error) {
	return s.repo.ZoneIDs(ctx, retailerID)
}

func (s *service) findByPhone(ctx context.Context, phone string) (*models.Retailer, error) {
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "phone identity missing")
	}
	retailer, err := s.repo.FindByPhone(ctx, phone)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "retailer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load retailer")
	}
	return retailer, nil
}
