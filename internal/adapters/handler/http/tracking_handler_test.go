package http_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
)

func TestRecordProgress(t *testing.T) {
	router := setupRouter(t, docstore.NewMemoryStore())
	id := createHabit(t, router, "u1", "read", "Salud")

	body := `{"id_habito":"` + id + `","fecha":"2025-01-10","progreso":0.5,"nota":"medio"}`

	t.Run("First write registers", func(t *testing.T) {
		w := do(router, http.MethodPost, "/seguimiento", body)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Seguimiento registrado", decode(t, w)["mensaje"])
	})

	t.Run("Second write updates", func(t *testing.T) {
		w := do(router, http.MethodPost, "/seguimiento", body)
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "Seguimiento actualizado", decode(t, w)["mensaje"])
	})

	t.Run("Unknown habit", func(t *testing.T) {
		w := do(router, http.MethodPost, "/seguimiento", `{"id_habito":"h_missing","fecha":"2025-01-10","progreso":1}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "El hábito no existe", decode(t, w)["error"])
	})

	t.Run("Missing progreso", func(t *testing.T) {
		w := do(router, http.MethodPost, "/seguimiento", `{"id_habito":"`+id+`","fecha":"2025-01-10"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Falta el campo progreso", decode(t, w)["error"])
	})

	t.Run("Bad date", func(t *testing.T) {
		w := do(router, http.MethodPost, "/seguimiento", `{"id_habito":"`+id+`","fecha":"ayer","progreso":1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Negative progress", func(t *testing.T) {
		w := do(router, http.MethodPost, "/seguimiento", `{"id_habito":"`+id+`","fecha":"2025-01-10","progreso":-1}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Progress of wrong type", func(t *testing.T) {
		for _, progress := range []string{`"mucho"`, `""`, `"NaN"`, `true`, `null`, `[1]`} {
			w := do(router, http.MethodPost, "/seguimiento", `{"id_habito":"`+id+`","fecha":"2025-01-10","progreso":`+progress+`}`)
			assert.Equal(t, http.StatusBadRequest, w.Code, progress)
			assert.Equal(t, "Tipo inválido para el campo progreso", decode(t, w)["error"], progress)
		}
	})

	t.Run("Progress as a numeric string", func(t *testing.T) {
		other := createHabit(t, router, "u1", "walk", "Salud")

		w := do(router, http.MethodPost, "/seguimiento", `{"id_habito":"`+other+`","fecha":"`+today()+`","progreso":" 0.5 "}`)
		require.Equal(t, http.StatusCreated, w.Code)

		w = do(router, http.MethodGet, "/habitos/estadisticas/"+other, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(50), decode(t, w)["porcentaje_avance"])
	})
}

func TestRegisterAdvance(t *testing.T) {
	router := setupRouter(t, docstore.NewMemoryStore())
	id := createHabit(t, router, "u1", "read", "Salud")

	t.Run("Saves the percentage", func(t *testing.T) {
		w := do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":"`+id+`","porcentaje":75}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Avance guardado", decode(t, w)["message"])

		w = do(router, http.MethodGet, "/habitos/estadisticas/"+id, "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(75), decode(t, w)["porcentaje_avance"])
	})

	t.Run("Percentage as a numeric string", func(t *testing.T) {
		w := do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":"`+id+`","porcentaje":"60"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = do(router, http.MethodGet, "/habitos/estadisticas/"+id, "")
		assert.Equal(t, float64(60), decode(t, w)["porcentaje_avance"])

		w = do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":"`+id+`","porcentaje":"sesenta"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Completion shows up in the listing", func(t *testing.T) {
		w := do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":"`+id+`","porcentaje":100}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = do(router, http.MethodGet, "/habitos/u1", "")
		habits := decode(t, w)["habitos"].([]any)
		assert.Equal(t, true, habits[0].(map[string]any)["completado_actual"])
	})

	t.Run("Explicit date and unknown habit", func(t *testing.T) {
		w := do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":"h_orphan","porcentaje":40,"fecha":"2025-01-01"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("Malformed body", func(t *testing.T) {
		w := do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = do(router, http.MethodPost, "/habitos/registrar_avance", `{"habit_id":"`+id+`"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Falta el campo porcentaje", decode(t, w)["error"])
	})
}
