package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type HabitHandler struct {
	svc    *services.HabitService
	logger *zap.Logger
}

func NewHabitHandler(svc *services.HabitService, logger *zap.Logger) *HabitHandler {
	return &HabitHandler{
		svc:    svc,
		logger: logger,
	}
}

type createHabitRequest struct {
	UserID       string  `json:"id_usuario"`
	Name         string  `json:"nombre_habito"`
	Category     string  `json:"id_categoria"`
	Frequency    string  `json:"frecuencia"`
	Description  string  `json:"descripcion"`
	TargetPerDay *int    `json:"target_per_day"`
	Status       *string `json:"estado_habito"`
	Color        *string `json:"color"`
	ReminderTime *string `json:"reminder_time"`
}

type updateHabitRequest struct {
	Name         *string `json:"nombre_habito"`
	Category     *string `json:"id_categoria"`
	Description  *string `json:"descripcion"`
	Frequency    *string `json:"frecuencia"`
	TargetPerDay *int    `json:"target_per_day"`
	Status       *string `json:"estado_habito"`
	Color        *string `json:"color"`
	ReminderTime *string `json:"reminder_time"`
}

func (r updateHabitRequest) patch() domain.HabitPatch {
	return domain.HabitPatch{
		Name:         r.Name,
		Category:     r.Category,
		Description:  r.Description,
		Frequency:    r.Frequency,
		TargetPerDay: r.TargetPerDay,
		Status:       r.Status,
		Color:        r.Color,
		ReminderTime: r.ReminderTime,
	}
}

func (h *HabitHandler) RegisterRoutes(router gin.IRouter) {
	habits := router.Group("/habitos")
	{
		habits.POST("", middleware.RequireJSON(), h.Create)
		habits.GET("/:id", h.List)
		habits.PUT("/:id", middleware.RequireJSON(), h.Update)
		habits.PATCH("/:id", middleware.RequireJSON(), h.Update)
		habits.DELETE("/:id", h.Delete)
	}
}

func (h *HabitHandler) Create(c *gin.Context) {
	var req createHabitRequest
	if !bindJSON(c, &req, "id_usuario", "nombre_habito", "id_categoria", "frecuencia") {
		return
	}

	habit, err := h.svc.Create(c.Request.Context(), services.CreateHabitInput{
		UserID:       req.UserID,
		Name:         req.Name,
		Category:     req.Category,
		Frequency:    req.Frequency,
		Description:  req.Description,
		TargetPerDay: req.TargetPerDay,
		Status:       req.Status,
		Color:        req.Color,
		ReminderTime: req.ReminderTime,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"mensaje": "Hábito creado correctamente",
		"habito":  habit,
	})
}

// List answers GET /habitos/:id where id is the owner's user id.
func (h *HabitHandler) List(c *gin.Context) {
	habits, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(habits),
		"habitos": habits,
	})
}

func (h *HabitHandler) Update(c *gin.Context) {
	var req updateHabitRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.patch()); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Hábito actualizado correctamente"})
}

func (h *HabitHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Hábito eliminado correctamente"})
}
