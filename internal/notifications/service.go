package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/pkg/db/models"
	pkgerrors "github.com/kunalverma/groupbuy-backend/pkg/errors"
	"github.com/kunalverma/groupbuy-backend/pkg/pagination"
)

// Service defines notification list/read operations.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
	ListAdmin(ctx context.Context, limit int, cursor string) (*ListResult, error)
	MarkRead(ctx context.Context, retailerID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, retailerID uuid.UUID) (int64, error)
	UnreadCount(ctx context.Context, retailerID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// ListParams configures pagination for a retailer's notification feed.
type ListParams struct {
	RetailerID uuid.UUID
	Limit      int
	Cursor     string
	UnreadOnly bool
}

// ListResult wraps returned notifications and the cursor for the next page.
type ListResult struct {
	Items  []models.Notification `json:"items"`
	Cursor string                `json:"cursor"`
}

// NewService wires notifications dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.RetailerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "retailer id required")
	}
	query := listNotificationsParams{
		RetailerID: params.RetailerID,
		Limit:      params.Limit,
		UnreadOnly: params.UnreadOnly,
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	return s.list(ctx, query)
}

func (s *service) ListAdmin(ctx context.Context, limit int, cursor string) (*ListResult, error) {
	query := listNotificationsParams{Admin: true, Limit: limit}
	if cursor != "" {
		parsed, err := pagination.ParseCursor(cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = parsed
	}
	return s.list(ctx, query)
}

func (s *service) list(ctx context.Context, query listNotificationsParams) (*ListResult, error) {
	rows, next, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: rows, Cursor: cursor}, nil
}

func (s *service) MarkRead(ctx context.Context, retailerID, notificationID uuid.UUID) error {
	if retailerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "retailer id required")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	result, err := s.repo.MarkRead(ctx, retailerID, notificationID, time.Now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if !result.Found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, retailerID uuid.UUID) (int64, error) {
	if retailerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retailer id required")
	}
	count, err := s.repo.MarkAllRead(ctx, retailerID, time.Now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notifications read")
	}
	return count, nil
}

func (s *service) UnreadCount(ctx context.Context, retailerID uuid.UUID) (int64, error) {
	if retailerID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "retailer id required")
	}
	count, err := s.repo.UnreadCount(ctx, retailerID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count unread notifications")
	}
	return count, nil
}
