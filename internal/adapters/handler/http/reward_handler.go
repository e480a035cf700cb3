package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RewardHandler struct {
	svc    *services.RewardService
	logger *zap.Logger
}

func NewRewardHandler(svc *services.RewardService, logger *zap.Logger) *RewardHandler {
	return &RewardHandler{
		svc:    svc,
		logger: logger,
	}
}

type grantRewardRequest struct {
	UserID string `json:"id_usuario"`
	Points *int   `json:"puntos"`
}

func (h *RewardHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/recompensar", h.Grant)
	router.GET("/monedas/:id", h.Balance)
}

func (h *RewardHandler) Grant(c *gin.Context) {
	var req grantRewardRequest
	if !bindJSON(c, &req) {
		return
	}

	points, err := h.svc.Grant(c.Request.Context(), req.UserID, req.Points)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	metrics.AddRewardPoints(points)
	c.JSON(http.StatusOK, gin.H{
		"mensaje":        "¡Éxito!",
		"puntos_ganados": points,
	})
}

// Balance always answers 200. A store failure reports 0 coins plus the error.
func (h *RewardHandler) Balance(c *gin.Context) {
	userID := c.Param("id")

	coins, err := h.svc.Balance(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("failed to read balance", zap.String("user_id", userID), zap.Error(err))
		metrics.IncDegradedRead("monedas")
		c.JSON(http.StatusOK, gin.H{"monedas": 0, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"monedas": coins})
}
