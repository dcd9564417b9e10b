package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kunalverma/groupbuy-backend/pkg/enums"
)

// Notification is an in-app message fanned out from domain events. RetailerID
// is nil for admin-audience rows.
type Notification struct {
	ID         uuid.UUID                  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RetailerID *uuid.UUID                 `gorm:"column:retailer_id;type:uuid;index"`
	Audience   enums.NotificationAudience `gorm:"column:audience;type:text;not null;index"`
	Type       enums.NotificationType     `gorm:"column:type;type:text;not null"`
	Title      string                     `gorm:"column:title;type:text;not null"`
	Body       string                     `gorm:"column:body;type:text;not null"`
	ReadAt     *time.Time                 `gorm:"column:read_at"`
	CreatedAt  time.Time                  `gorm:"column:created_at;autoCreateTime"`
}
