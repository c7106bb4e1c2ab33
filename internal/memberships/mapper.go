package memberships

import (
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/visibility"
)

type memberWithUserRow struct {
	models.CircleMembership
	FirstName          string `gorm:"column:first_name"`
	LastName           string `gorm:"column:last_name"`
	GlobalShowFullName *bool  `gorm:"column:global_show_full_name"`
}

func memberFromRow(row memberWithUserRow) MemberDTO {
	return MemberDTO{
		MembershipID: row.ID,
		UserID:       row.UserID,
		DisplayName: visibility.DisplayName(visibility.DisplayNameInput{
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			GlobalPref: row.GlobalShowFullName,
			CirclePref: row.ShowFullName,
		}),
		JoinedAt: row.JoinedAt,
	}
}

func membersFromRows(rows []memberWithUserRow) []MemberDTO {
	out := make([]MemberDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out
}
