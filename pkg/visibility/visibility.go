package visibility

import (
	"strings"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
)

// MemberViewInput drives the shared visibility checks for member listing queries.
type MemberViewInput struct {
	Circle   *models.Circle
	ViewerID uuid.UUID
}

// CanViewMembers reports whether the viewer may see the circle's member list.
// The owner always can; everyone else is gated by the circle's show_members
// flag, where an unset flag counts as visible.
func CanViewMembers(input MemberViewInput) bool {
	if input.Circle == nil {
		return false
	}
	if input.Circle.OwnerID == input.ViewerID {
		return true
	}
	return input.Circle.MembersVisible()
}

// DisplayNameInput carries the name parts plus the layered show-full-name flags.
type DisplayNameInput struct {
	FirstName string
	LastName  string
	// GlobalPref is the user's account-wide preference; nil means unset.
	GlobalPref *bool
	// CirclePref is the per-circle override; nil falls back to GlobalPref.
	CirclePref *bool
}

// ShowFullName resolves the layered preference: the per-circle override wins,
// then the account-wide preference. With both unset the full name stays
// hidden.
func ShowFullName(input DisplayNameInput) bool {
	if input.CirclePref != nil {
		return *input.CirclePref
	}
	if input.GlobalPref != nil {
		return *input.GlobalPref
	}
	return false
}

// DisplayName renders the privacy-filtered name shown in member listings.
// When the resolved preference hides the full name, the last name collapses
// to an initial.
func DisplayName(input DisplayNameInput) string {
	first := strings.TrimSpace(input.FirstName)
	last := strings.TrimSpace(input.LastName)

	if ShowFullName(input) {
		return strings.TrimSpace(first + " " + last)
	}
	if last == "" {
		return first
	}
	return strings.TrimSpace(first + " " + string([]rune(last)[0]) + ".")
}
