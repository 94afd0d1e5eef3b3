package v1

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes регистрирует все маршруты API v1
func (h *Handler) RegisterRoutes(api *gin.RouterGroup) {
	operator := APIKeyAuthMiddleware(h.cfg, h.logger)

	// Подача и чтение сообщений открыты, операторские действия требуют ключ
	reports := api.Group("/reports")
	{
		reports.POST("", h.createReport)
		reports.GET("", h.listReports)
		reports.GET("/:id", h.getReport)
		reports.PATCH("/:id/status", operator, h.updateStatus)
		reports.POST("/:id/notes", operator, h.addNote)
		reports.PATCH("/:id/verification", operator, h.overrideVerification)
	}
	api.GET("/stats", operator, h.getStats)

	risk := api.Group("/risk")
	{
		risk.GET("", h.scoreRisk)
		risk.GET("/grid", h.scoreGrid)
	}

	// Живой канал событий
	api.GET("/ws", h.serveWS)

	// Маршрут Health-check
	api.GET("/system/health", h.healthCheck)
}
