package http

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/metrics"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TrackingHandler struct {
	svc    *services.TrackingService
	logger *zap.Logger
}

func NewTrackingHandler(svc *services.TrackingService, logger *zap.Logger) *TrackingHandler {
	return &TrackingHandler{
		svc:    svc,
		logger: logger,
	}
}

type recordProgressRequest struct {
	HabitID  string `json:"id_habito"`
	Date     string `json:"fecha"`
	Progress number `json:"progreso"`
	Note     string `json:"nota"`
}

type dailyPercentageRequest struct {
	HabitID    string `json:"habit_id"`
	Percentage number `json:"porcentaje"`
	Date       string `json:"fecha"`
}

// number accepts a JSON number or a string holding one.
type number float64

func (n *number) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch v := raw.(type) {
	case float64:
		*n = number(v)
		return nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*n = number(f)
			return nil
		}
	}
	return &json.UnmarshalTypeError{Value: string(data), Type: reflect.TypeFor[float64]()}
}

func (h *TrackingHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/seguimiento", middleware.RequireJSON(), h.Record)
	router.POST("/habitos/registrar_avance", h.RecordPercentage)
}

func (h *TrackingHandler) Record(c *gin.Context) {
	var req recordProgressRequest
	if !bindJSON(c, &req, "id_habito", "fecha", "progreso") {
		return
	}

	_, inserted, err := h.svc.RecordProgress(c.Request.Context(), services.RecordProgressInput{
		HabitID:  req.HabitID,
		Date:     req.Date,
		Progress: float64(req.Progress),
		Note:     req.Note,
	})
	if errors.Is(err, domain.ErrHabitNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "El hábito no existe"})
		return
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	metrics.IncTrackingUpsert(inserted)

	msg := "Seguimiento actualizado"
	if inserted {
		msg = "Seguimiento registrado"
	}
	c.JSON(http.StatusCreated, gin.H{"mensaje": msg})
}

func (h *TrackingHandler) RecordPercentage(c *gin.Context) {
	var req dailyPercentageRequest
	if !bindJSON(c, &req, "habit_id", "porcentaje") {
		return
	}

	_, inserted, err := h.svc.UpsertDailyPercentage(c.Request.Context(), req.HabitID, float64(req.Percentage), req.Date)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	metrics.IncTrackingUpsert(inserted)
	c.JSON(http.StatusOK, gin.H{"message": "Avance guardado"})
}
