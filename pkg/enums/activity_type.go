package enums

import "fmt"

// ActivityType labels entries in a circle's engagement log.
type ActivityType string

const (
	ActivityTypeMessageSent   ActivityType = "message_sent"
	ActivityTypeEventCreated  ActivityType = "event_created"
	ActivityTypeMemberJoined  ActivityType = "member_joined"
	ActivityTypeMemberLeft    ActivityType = "member_left"
	ActivityTypeMemberRemoved ActivityType = "member_removed"
)

var validActivityTypes = []ActivityType{
	ActivityTypeMessageSent,
	ActivityTypeEventCreated,
	ActivityTypeMemberJoined,
	ActivityTypeMemberLeft,
	ActivityTypeMemberRemoved,
}

// IsValid reports whether the value is a known ActivityType.
func (a ActivityType) IsValid() bool {
	for _, candidate := range validActivityTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityType converts raw input into an ActivityType.
func ParseActivityType(value string) (ActivityType, error) {
	for _, candidate := range validActivityTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity type %q", value)
}
