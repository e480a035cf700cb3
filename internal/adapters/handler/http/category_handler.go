package http

import (
	"net/http"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	svc    *services.CategoryService
	logger *zap.Logger
}

func NewCategoryHandler(svc *services.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		svc:    svc,
		logger: logger,
	}
}

type createCategoryRequest struct {
	Name   string  `json:"nombre"`
	Color  *string `json:"color"`
	Icon   *string `json:"icono"`
	UserID *string `json:"id_usuario"`
}

type updateCategoryRequest struct {
	Name   *string `json:"nombre"`
	Color  *string `json:"color"`
	Icon   *string `json:"icono"`
	Status *string `json:"estado"`
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categorias-habitos")
	{
		categories.POST("", middleware.RequireJSON(), h.Create)
		categories.GET("/:id", h.List)
		categories.PUT("/:id", middleware.RequireJSON(), h.Update)
		categories.PATCH("/:id", middleware.RequireJSON(), h.Update)
		categories.DELETE("/:id", h.Delete)
	}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req createCategoryRequest
	if !bindJSON(c, &req, "nombre") {
		return
	}

	category, err := h.svc.Create(c.Request.Context(), services.CreateCategoryInput{
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
		UserID: req.UserID,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"mensaje":   "Categoría creada correctamente",
		"categoria": category,
	})
}

// List answers GET /categorias-habitos/:id where id is the owner's user id.
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.svc.List(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":      len(categories),
		"categorias": categories,
	})
}

func (h *CategoryHandler) Update(c *gin.Context) {
	var req updateCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	patch := domain.CategoryPatch{
		Name:   req.Name,
		Color:  req.Color,
		Icon:   req.Icon,
		Status: req.Status,
	}
	if _, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Categoría actualizada correctamente"})
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"mensaje": "Categoría eliminada correctamente"})
}
