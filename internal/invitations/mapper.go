package invitations

import (
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/visibility"
)

type invitationWithCircleRow struct {
	models.CircleInvitation
	CircleName          string `gorm:"column:circle_name"`
	CircleCategory      string `gorm:"column:circle_category"`
	CircleMemberCount   int    `gorm:"column:circle_member_count"`
	InviterFirstName    string `gorm:"column:inviter_first_name"`
	InviterLastName     string `gorm:"column:inviter_last_name"`
	InviterShowFullName *bool  `gorm:"column:inviter_show_full_name"`
}

func invitationFromRow(row invitationWithCircleRow) InvitationWithCircle {
	return InvitationWithCircle{
		InvitationDTO:     *ToDTO(&row.CircleInvitation),
		CircleName:        row.CircleName,
		CircleCategory:    row.CircleCategory,
		CircleMemberCount: row.CircleMemberCount,
		InviterName: visibility.DisplayName(visibility.DisplayNameInput{
			FirstName:  row.InviterFirstName,
			LastName:   row.InviterLastName,
			GlobalPref: row.InviterShowFullName,
		}),
	}
}

func invitationsFromRows(rows []invitationWithCircleRow) []InvitationWithCircle {
	out := make([]InvitationWithCircle, 0, len(rows))
	for _, row := range rows {
		out = append(out, invitationFromRow(row))
	}
	return out
}
