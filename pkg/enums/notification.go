package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeCircleInvite   NotificationType = "circle_invite"
	NotificationTypeInviteAccepted NotificationType = "invite_accepted"
	NotificationTypeInviteRejected NotificationType = "invite_rejected"
	NotificationTypeMemberRemoved  NotificationType = "member_removed"
	NotificationTypeCircleEvent    NotificationType = "circle_event"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeCircleInvite,
	NotificationTypeInviteAccepted,
	NotificationTypeInviteRejected,
	NotificationTypeMemberRemoved,
	NotificationTypeCircleEvent,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
