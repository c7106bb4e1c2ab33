package engagement

import (
	"encoding/json"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/visibility"
)

type messageWithSenderRow struct {
	models.CircleMessage
	FirstName          string `gorm:"column:first_name"`
	LastName           string `gorm:"column:last_name"`
	GlobalShowFullName *bool  `gorm:"column:global_show_full_name"`
	CircleShowFullName *bool  `gorm:"column:circle_show_full_name"`
}

func messageFromRow(row messageWithSenderRow) MessageDTO {
	return MessageDTO{
		ID:       row.ID,
		CircleID: row.CircleID,
		SenderID: row.SenderID,
		SenderName: visibility.DisplayName(visibility.DisplayNameInput{
			FirstName:  row.FirstName,
			LastName:   row.LastName,
			GlobalPref: row.GlobalShowFullName,
			CirclePref: row.CircleShowFullName,
		}),
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
	}
}

func messagesFromRows(rows []messageWithSenderRow) []MessageDTO {
	out := make([]MessageDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, messageFromRow(row))
	}
	return out
}

type eventWithGoingRow struct {
	models.CircleEvent
	GoingCount int `gorm:"column:going_count"`
}

func eventsFromRows(rows []eventWithGoingRow) []EventDTO {
	out := make([]EventDTO, 0, len(rows))
	for _, row := range rows {
		event := row.CircleEvent
		out = append(out, *eventToDTO(&event, row.GoingCount))
	}
	return out
}

func activityFromModel(activity models.CircleActivity) ActivityDTO {
	dto := ActivityDTO{
		ID:        activity.ID,
		CircleID:  activity.CircleID,
		ActorID:   activity.ActorID,
		Type:      activity.Type,
		CreatedAt: activity.CreatedAt,
	}
	if len(activity.Data) > 0 {
		var decoded any
		if err := json.Unmarshal(activity.Data, &decoded); err == nil {
			dto.Data = decoded
		}
	}
	return dto
}

func activitiesFromModels(rows []models.CircleActivity) []ActivityDTO {
	out := make([]ActivityDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, activityFromModel(row))
	}
	return out
}
