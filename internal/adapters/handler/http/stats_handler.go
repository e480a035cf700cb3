package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	svc *services.StatsService
}

func NewStatsHandler(svc *services.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

func (h *StatsHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/habitos/estadisticas/:habit_id", h.HabitStats)
}

// HabitStats always answers 200. Failures show up in the mensaje field.
func (h *StatsHandler) HabitStats(c *gin.Context) {
	stats := h.svc.HabitStreaks(c.Request.Context(), c.Param("habit_id"))
	if stats.Message != "" {
		metrics.IncDegradedRead("estadisticas")
	}
	c.JSON(http.StatusOK, stats)
}
