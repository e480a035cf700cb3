package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habitos/internal/config"
)

func newTestApp(t *testing.T, driver string) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Store.Driver = driver
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "kanso.db")
	cfg.RateLimit.Requests = 0

	a, err := newApp(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

func call(t *testing.T, a *app, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(data)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return w.Code, out
}

func TestEndToEnd_HabitLifecycle(t *testing.T) {
	for _, driver := range []string{"memory", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			a := newTestApp(t, driver)
			today := time.Now().Format("2006-01-02")
			yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

			var habitID, categoryID string

			t.Run("1. Create Category", func(t *testing.T) {
				code, body := call(t, a, http.MethodPost, "/categorias-habitos", map[string]any{"nombre": "Salud"})
				require.Equal(t, http.StatusCreated, code)
				categoryID = body["categoria"].(map[string]any)["id_categoria"].(string)
			})

			t.Run("2. Create Habit", func(t *testing.T) {
				code, body := call(t, a, http.MethodPost, "/habitos", map[string]any{
					"id_usuario":    "user-e2e",
					"nombre_habito": "meditar",
					"id_categoria":  "Salud",
					"frecuencia":    "diaria",
					"reminder_time": "07:00",
				})
				require.Equal(t, http.StatusCreated, code)

				habit := body["habito"].(map[string]any)
				habitID = habit["id_habito"].(string)
				assert.Equal(t, "Meditar", habit["nombre_habito"])
				assert.Equal(t, "07:00", habit["reminder_time"])
			})

			t.Run("3. Duplicate is rejected", func(t *testing.T) {
				code, _ := call(t, a, http.MethodPost, "/habitos", map[string]any{
					"id_usuario":    "user-e2e",
					"nombre_habito": "MEDITAR",
					"id_categoria":  "Salud",
					"frecuencia":    "diaria",
				})
				assert.Equal(t, http.StatusConflict, code)
			})

			t.Run("4. Track two days", func(t *testing.T) {
				code, body := call(t, a, http.MethodPost, "/seguimiento", map[string]any{
					"id_habito": habitID, "fecha": yesterday, "progreso": 1,
				})
				require.Equal(t, http.StatusCreated, code)
				assert.Equal(t, "Seguimiento registrado", body["mensaje"])

				code, _ = call(t, a, http.MethodPost, "/habitos/registrar_avance", map[string]any{
					"habit_id": habitID, "porcentaje": 100,
				})
				require.Equal(t, http.StatusOK, code)
			})

			t.Run("5. Stats", func(t *testing.T) {
				code, body := call(t, a, http.MethodGet, "/habitos/estadisticas/"+habitID, nil)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, float64(2), body["racha_actual"])
				assert.Equal(t, float64(2), body["racha_maxima"])
				assert.Equal(t, today, body["ultimo_dia"])
				assert.Equal(t, float64(100), body["porcentaje_avance"])
			})

			t.Run("6. List", func(t *testing.T) {
				code, body := call(t, a, http.MethodGet, "/habitos/user-e2e", nil)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, float64(1), body["total"])

				habit := body["habitos"].([]any)[0].(map[string]any)
				assert.Equal(t, true, habit["completado_actual"])
				assert.Len(t, habit["records"], 2)
			})

			t.Run("7. Category in use", func(t *testing.T) {
				code, body := call(t, a, http.MethodGet, "/categorias-habitos/user-e2e", nil)
				require.Equal(t, http.StatusOK, code)
				category := body["categorias"].([]any)[0].(map[string]any)
				assert.Equal(t, float64(1), category["total_habitos"])

				code, _ = call(t, a, http.MethodDelete, "/categorias-habitos/"+categoryID, nil)
				assert.Equal(t, http.StatusConflict, code)

				code, body = call(t, a, http.MethodGet, "/categorias-habitos/user-e2e", nil)
				require.Equal(t, http.StatusOK, code)
				require.Equal(t, float64(1), body["total"])
				category = body["categorias"].([]any)[0].(map[string]any)
				assert.Equal(t, categoryID, category["id_categoria"])
				assert.Equal(t, "activa", category["estado"])
			})

			t.Run("8. Rewards", func(t *testing.T) {
				code, _ := call(t, a, http.MethodPost, "/recompensar", map[string]any{"id_usuario": "user-e2e"})
				require.Equal(t, http.StatusOK, code)
				code, _ = call(t, a, http.MethodPost, "/recompensar", map[string]any{"id_usuario": "user-e2e", "puntos": 3})
				require.Equal(t, http.StatusOK, code)

				code, body := call(t, a, http.MethodGet, "/monedas/user-e2e", nil)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, float64(8), body["monedas"])
			})

			t.Run("9. Deactivate, then delete category", func(t *testing.T) {
				code, _ := call(t, a, http.MethodPatch, "/habitos/"+habitID, map[string]any{"estado_habito": "inactivo"})
				require.Equal(t, http.StatusOK, code)

				code, _ = call(t, a, http.MethodDelete, "/categorias-habitos/"+categoryID, nil)
				assert.Equal(t, http.StatusOK, code)

				code, body := call(t, a, http.MethodGet, "/categorias-habitos/user-e2e", nil)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, float64(0), body["total"])
			})

			t.Run("10. Delete habit", func(t *testing.T) {
				code, _ := call(t, a, http.MethodDelete, "/habitos/"+habitID, nil)
				require.Equal(t, http.StatusOK, code)

				code, body := call(t, a, http.MethodGet, "/habitos/user-e2e", nil)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, float64(0), body["total"])
			})

			t.Run("11. Health", func(t *testing.T) {
				code, body := call(t, a, http.MethodGet, "/health", nil)
				require.Equal(t, http.StatusOK, code)
				assert.Equal(t, "connected", body["database"])
			})
		})
	}
}
