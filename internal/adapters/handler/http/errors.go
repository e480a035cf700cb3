package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/comitanigiacomo/kanso-habitos/internal/core/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	msgInternal         = "Error interno del servidor"
	msgInvalidJSON      = "El cuerpo de la solicitud no es un JSON válido"
	msgHabitNotFound    = "Hábito no encontrado"
	msgHabitExists      = "El hábito ya existe para este usuario"
	msgCategoryNotFound = "Categoría no encontrada"
	msgUserIDRequired   = "ID de usuario requerido"
)

// bindJSON decodes the body into dst after checking that every required
// key is present. It writes the 400 response itself and returns false on
// failure.
func bindJSON(c *gin.Context, dst any, required ...string) bool {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return false
	}

	var present map[string]json.RawMessage
	if err := json.Unmarshal(body, &present); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return false
	}

	for _, field := range required {
		if _, ok := present[field]; !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Falta el campo %s", field)})
			return false
		}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Tipo inválido para el campo %s", typeErr.Field)})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidJSON})
		return false
	}
	return true
}

// writeError maps domain errors to status codes. Anything unknown is a 500
// and gets logged.
func writeError(c *gin.Context, logger *zap.Logger, err error) {
	var inUse *domain.CategoryInUseError

	switch {
	case errors.As(err, &inUse):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Conflict",
			"mensaje": fmt.Sprintf("No se puede eliminar la categoría '%s' porque tiene hábitos asociados.", inUse.Name),
		})
	case errors.Is(err, domain.ErrHabitAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": msgHabitExists})
	case errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgHabitNotFound})
	case errors.Is(err, domain.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": msgCategoryNotFound})
	case errors.Is(err, domain.ErrUserIDRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgUserIDRequired})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgInternal})
	}
}
