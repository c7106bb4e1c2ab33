package enums

import "fmt"

// AttendeeStatus is a member's RSVP for a circle event.
type AttendeeStatus string

const (
	AttendeeStatusGoing    AttendeeStatus = "going"
	AttendeeStatusMaybe    AttendeeStatus = "maybe"
	AttendeeStatusDeclined AttendeeStatus = "declined"
)

var validAttendeeStatuses = []AttendeeStatus{
	AttendeeStatusGoing,
	AttendeeStatusMaybe,
	AttendeeStatusDeclined,
}

// IsValid reports whether the value is a known AttendeeStatus.
func (a AttendeeStatus) IsValid() bool {
	for _, candidate := range validAttendeeStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAttendeeStatus converts raw input into an AttendeeStatus.
func ParseAttendeeStatus(value string) (AttendeeStatus, error) {
	for _, candidate := range validAttendeeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attendee status %q", value)
}
