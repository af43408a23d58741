package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/eshop-backend/internal/repository"
)

// RecentLogLimit is the number of entries the admin dashboard shows.
const RecentLogLimit = 100

type LogHandler struct {
	logs repository.ActivityRepository
}

func NewLogHandler(logs repository.ActivityRepository) *LogHandler {
	return &LogHandler{logs: logs}
}

func (h *LogHandler) List(c *fiber.Ctx) error {
	entries, err := h.logs.ListRecent(c.UserContext(), RecentLogLimit)
	if err != nil {
		return ServerError(c, "failed to list activity logs", err)
	}

	out := make([]dto.ActivityLogResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, dto.NewActivityLogResponse(e))
	}
	return c.JSON(out)
}
