package enums

import "fmt"

// NotificationType buckets in-app notifications for display grouping.
type NotificationType string

const (
	NotificationTypeOrder   NotificationType = "order"
	NotificationTypePricing NotificationType = "pricing"
	NotificationTypeOffer   NotificationType = "offer"
	NotificationTypePayment NotificationType = "payment"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrder,
	NotificationTypePricing,
	NotificationTypeOffer,
	NotificationTypePayment,
}

// IsValid reports whether the value matches the canonical notification type enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// NotificationAudience scopes who a notification row is addressed to.
type NotificationAudience string

const (
	NotificationAudienceRetailer NotificationAudience = "retailer"
	NotificationAudienceAdmin    NotificationAudience = "admin"
)

var validNotificationAudiences = []NotificationAudience{
	NotificationAudienceRetailer,
	NotificationAudienceAdmin,
}

// IsValid reports whether the value matches the canonical audience enum.
func (a NotificationAudience) IsValid() bool {
	for _, candidate := range validNotificationAudiences {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseNotificationAudience converts the raw string to NotificationAudience.
func ParseNotificationAudience(value string) (NotificationAudience, error) {
	for _, candidate := range validNotificationAudiences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification audience %q", value)
}
