package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	paginationpkg "github.com/kunalverma/groupbuy-backend/pkg/pagination"
)

type fakeRepository struct {
	listFn        func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error)
	markReadFn    func(ctx context.Context, retailerID, notificationID uuid.UUID, now time.Time) (MarkResult, error)
	markAllReadFn func(ctx context.Context, retailerID uuid.UUID, now time.Time) (int64, error)
	unreadFn      func(ctx context.Context, retailerID uuid.UUID) (int64, error)
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepository) Create(ctx context.Context, notification *models.Notification) error {
	return nil
}

func (f *fakeRepository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	return nil
}

func (f *fakeRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
	if f.listFn != nil {
		return f.listFn(ctx, params)
	}
	return nil, nil, nil
}

func (f *fakeRepository) MarkRead(ctx context.Context, retailerID, notificationID uuid.UUID, now time.Time) (MarkResult, error) {
	if f.markReadFn != nil {
		return f.markReadFn(ctx, retailerID, notificationID, now)
	}
	return MarkResult{}, nil
}

func (f *fakeRepository) MarkAllRead(ctx context.Context, retailerID uuid.UUID, now time.Time) (int64, error) {
	if f.markAllReadFn != nil {
		return f.markAllReadFn(ctx, retailerID, now)
	}
	return 0, nil
}

func (f *fakeRepository) UnreadCount(ctx context.Context, retailerID uuid.UUID) (int64, error) {
	if f.unreadFn != nil {
		return f.unreadFn(ctx, retailerID)
	}
	return 0, nil
}

func (f *fakeRepository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newServiceWithRepo(repo Repository) Service {
	svc, _ := NewService(repo)
	return svc
}

func TestService_ListNotifications(t *testing.T) {
	retailerID := uuid.New()
	first := models.Notification{ID: uuid.New(), CreatedAt: time.Now().Add(-time.Hour)}
	second := models.Notification{ID: uuid.New(), CreatedAt: time.Now()}

	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if params.RetailerID != retailerID {
				t.Fatalf("unexpected retailer id %s", params.RetailerID)
			}
			if params.Admin {
				t.Fatal("retailer listing must not query the admin feed")
			}
			return []models.Notification{second, first}, &paginationpkg.Cursor{CreatedAt: first.CreatedAt, ID: first.ID}, nil
		},
	}
	svc := newServiceWithRepo(repo)

	result, err := svc.List(context.Background(), ListParams{RetailerID: retailerID, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected next-page cursor")
	}
	parsed, err := paginationpkg.ParseCursor(result.Cursor)
	if err != nil || parsed == nil || parsed.ID != first.ID {
		t.Fatalf("cursor does not round-trip: %v %v", parsed, err)
	}
}

func TestService_ListRejectsBadCursor(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{RetailerID: uuid.New(), Cursor: "not-base64!"})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestService_ListRequiresRetailer(t *testing.T) {
	svc := newServiceWithRepo(&fakeRepository{})
	_, err := svc.List(context.Background(), ListParams{})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want validation error", err)
	}
}

func TestService_ListAdminQueriesAdminFeed(t *testing.T) {
	repo := &fakeRepository{
		listFn: func(ctx context.Context, params listNotificationsParams) ([]models.Notification, *paginationpkg.Cursor, error) {
			if !params.Admin {
				t.Fatal("expected admin feed query")
			}
			return nil, nil, nil
		},
	}
	if _, err := newServiceWithRepo(repo).ListAdmin(context.Background(), 10, ""); err != nil {
		t.Fatalf("ListAdmin: %v", err)
	}
}

func TestService_MarkRead(t *testing.T) {
	retailerID := uuid.New()
	notificationID := uuid.New()

	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, gotRetailer, gotNotification uuid.UUID, now time.Time) (MarkResult, error) {
			if gotRetailer != retailerID || gotNotification != notificationID {
				t.Fatal("wrong ids passed through")
			}
			return MarkResult{Updated: true, Found: true}, nil
		},
	}
	if err := newServiceWithRepo(repo).MarkRead(context.Background(), retailerID, notificationID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
}

func TestService_MarkReadNotFound(t *testing.T) {
	repo := &fakeRepository{
		markReadFn: func(ctx context.Context, retailerID, notificationID uuid.UUID, now time.Time) (MarkResult, error) {
			return MarkResult{Found: false}, nil
		},
	}
	err := newServiceWithRepo(repo).MarkRead(context.Background(), uuid.New(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("error = %v, want not found", err)
	}
}

func TestService_MarkAllReadPropagatesError(t *testing.T) {
	repo := &fakeRepository{
		markAllReadFn: func(ctx context.Context, retailerID uuid.UUID, now time.Time) (int64, error) {
			return 0, errors.New("db down")
		},
	}
	_, err := newServiceWithRepo(repo).MarkAllRead(context.Background(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeDependency {
		t.Fatalf("error = %v, want dependency error", err)
	}
}
