package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/models"
)

type LogUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

type ActivityLogResponse struct {
	ID        uuid.UUID       `json:"id"`
	User      *LogUser        `json:"user"`
	Action    string          `json:"action"`
	TargetID  *uuid.UUID      `json:"target_id"`
	Details   json.RawMessage `json:"details"`
	CreatedAt time.Time       `json:"created_at"`
}

func NewActivityLogResponse(l models.ActivityLog) ActivityLogResponse {
	resp := ActivityLogResponse{
		ID:        l.ID,
		Action:    l.Action,
		TargetID:  l.TargetID,
		Details:   json.RawMessage(l.Details),
		CreatedAt: l.CreatedAt,
	}
	if len(resp.Details) == 0 {
		resp.Details = json.RawMessage("{}")
	}
	if l.User != nil {
		resp.User = &LogUser{ID: l.User.ID, Name: l.User.Name, Email: l.User.Email}
	}
	return resp
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Modules   int    `json:"modules"`
}
