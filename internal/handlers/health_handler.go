package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/inkstone-labs/reader-backend/internal/database"
	"github.com/inkstone-labs/reader-backend/internal/dto"
	"github.com/inkstone-labs/reader-backend/internal/tenant"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	registry *tenant.Registry
}

func NewHealthHandler(db *gorm.DB, registry *tenant.Registry) *HealthHandler {
	return &HealthHandler{db: db, registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(h.db); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		SiteCount: len(h.registry.All()),
	})
}
