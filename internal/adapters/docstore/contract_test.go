package docstore

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runStoreContract checks the behaviour every Store implementation must share.
func runStoreContract(t *testing.T, open func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("Get: missing document returns ErrNotFound", func(t *testing.T) {
		s := open(t)

		_, err := s.Get(ctx, "habitos", "nope")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Set and Get round trip with JSON number types", func(t *testing.T) {
		s := open(t)

		err := s.Set(ctx, "habitos", "h_1", Fields{
			"nombre_habito":  "Leer",
			"target_per_day": 2,
			"reminder_time":  nil,
		})
		require.NoError(t, err)

		doc, err := s.Get(ctx, "habitos", "h_1")
		require.NoError(t, err)
		assert.Equal(t, "h_1", doc.ID)
		assert.Equal(t, "Leer", doc.Fields["nombre_habito"])
		assert.Equal(t, float64(2), doc.Fields["target_per_day"])
		assert.Contains(t, doc.Fields, "reminder_time")
		assert.Nil(t, doc.Fields["reminder_time"])
	})

	t.Run("Set replaces every field", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "habitos", "h_1", Fields{"a": "1", "b": "2"}))
		require.NoError(t, s.Set(ctx, "habitos", "h_1", Fields{"a": "3"}))

		doc, err := s.Get(ctx, "habitos", "h_1")
		require.NoError(t, err)
		assert.Equal(t, Fields{"a": "3"}, doc.Fields)
	})

	t.Run("Create rejects a taken id", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Create(ctx, "seguimiento_habitos", "h_1_2025-01-01", Fields{"progreso": 0.5}))
		err := s.Create(ctx, "seguimiento_habitos", "h_1_2025-01-01", Fields{"progreso": 1})
		assert.ErrorIs(t, err, ErrAlreadyExists)

		doc, err := s.Get(ctx, "seguimiento_habitos", "h_1_2025-01-01")
		require.NoError(t, err)
		assert.Equal(t, 0.5, doc.Fields["progreso"], "losing create must not overwrite")
	})

	t.Run("Update merges fields and keeps the rest", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "categorias_habitos", "ch_1", Fields{
			"nombre": "Salud",
			"estado": "activa",
			"icono":  "heart",
		}))
		require.NoError(t, s.Update(ctx, "categorias_habitos", "ch_1", Fields{
			"estado": "inactiva",
			"icono":  nil,
		}))

		doc, err := s.Get(ctx, "categorias_habitos", "ch_1")
		require.NoError(t, err)
		assert.Equal(t, "Salud", doc.Fields["nombre"])
		assert.Equal(t, "inactiva", doc.Fields["estado"])
		assert.Contains(t, doc.Fields, "icono")
		assert.Nil(t, doc.Fields["icono"])
	})

	t.Run("Update on a missing document returns ErrNotFound", func(t *testing.T) {
		s := open(t)

		err := s.Update(ctx, "habitos", "ghost", Fields{"estado_habito": "inactivo"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Delete removes and is idempotent", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "habitos", "h_1", Fields{"a": "b"}))
		require.NoError(t, s.Delete(ctx, "habitos", "h_1"))
		require.NoError(t, s.Delete(ctx, "habitos", "h_1"))

		_, err := s.Get(ctx, "habitos", "h_1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Add assigns distinct ids", func(t *testing.T) {
		s := open(t)

		id1, err := s.Add(ctx, "seguimiento_habitos", Fields{"fecha": "2025-01-01"})
		require.NoError(t, err)
		id2, err := s.Add(ctx, "seguimiento_habitos", Fields{"fecha": "2025-01-02"})
		require.NoError(t, err)

		assert.NotEmpty(t, id1)
		assert.NotEqual(t, id1, id2)
	})

	t.Run("Query: equality, range, null and limit", func(t *testing.T) {
		s := open(t)

		seed := map[string]Fields{
			"r1": {"id_habito": "h_1", "fecha": "2025-01-01", "progreso": 1.0},
			"r2": {"id_habito": "h_1", "fecha": "2025-01-02", "progreso": 0.5},
			"r3": {"id_habito": "h_1", "fecha": "2025-01-03", "progreso": 1.2},
			"r4": {"id_habito": "h_2", "fecha": "2025-01-03", "progreso": 1.0},
		}
		for id, f := range seed {
			require.NoError(t, s.Set(ctx, "seguimiento_habitos", id, f))
		}

		completed, err := s.Query(ctx, Query{
			Collection: "seguimiento_habitos",
			Filters: []Filter{
				Where("id_habito", OpEq, "h_1"),
				Where("progreso", OpGte, 1),
			},
		})
		require.NoError(t, err)
		require.Len(t, completed, 2)
		assert.Equal(t, "r1", completed[0].ID)
		assert.Equal(t, "r3", completed[1].ID)

		recent, err := s.Query(ctx, Query{
			Collection: "seguimiento_habitos",
			Filters: []Filter{
				Where("id_habito", OpEq, "h_1"),
				Where("fecha", OpGte, "2025-01-02"),
			},
		})
		require.NoError(t, err)
		assert.Len(t, recent, 2)

		limited, err := s.Query(ctx, Query{
			Collection: "seguimiento_habitos",
			Filters:    []Filter{Where("fecha", OpEq, "2025-01-03")},
			Limit:      1,
		})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		require.NoError(t, s.Set(ctx, "categorias_habitos", "global", Fields{"nombre": "Salud", "id_usuario": nil}))
		require.NoError(t, s.Set(ctx, "categorias_habitos", "mine", Fields{"nombre": "Arte", "id_usuario": "u1"}))

		globals, err := s.Query(ctx, Query{
			Collection: "categorias_habitos",
			Filters:    []Filter{Where("id_usuario", OpEq, nil)},
		})
		require.NoError(t, err)
		require.Len(t, globals, 1)
		assert.Equal(t, "global", globals[0].ID)
	})

	t.Run("Query: boolean equality", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "seguimiento_habitos", "a", Fields{"completado": true}))
		require.NoError(t, s.Set(ctx, "seguimiento_habitos", "b", Fields{"completado": false}))

		docs, err := s.Query(ctx, Query{
			Collection: "seguimiento_habitos",
			Filters:    []Filter{Where("completado", OpEq, true)},
		})
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "a", docs[0].ID)
	})

	t.Run("Query: invalid field name is rejected", func(t *testing.T) {
		s := open(t)

		_, err := s.Query(ctx, Query{
			Collection: "habitos",
			Filters:    []Filter{Where("x'; DROP TABLE documents; --", OpEq, "y")},
		})
		assert.ErrorIs(t, err, ErrInvalidField)
	})

	t.Run("Increment creates the document and accumulates", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Increment(ctx, "usuarios", "u1", "monedas", 5))
		require.NoError(t, s.Increment(ctx, "usuarios", "u1", "monedas", 3))

		doc, err := s.Get(ctx, "usuarios", "u1")
		require.NoError(t, err)
		assert.Equal(t, float64(8), doc.Fields["monedas"])
	})

	t.Run("Increment keeps other fields", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "usuarios", "u1", Fields{"nombre": "Ana"}))
		require.NoError(t, s.Increment(ctx, "usuarios", "u1", "monedas", 5))

		doc, err := s.Get(ctx, "usuarios", "u1")
		require.NoError(t, err)
		assert.Equal(t, "Ana", doc.Fields["nombre"])
		assert.Equal(t, float64(5), doc.Fields["monedas"])
	})

	t.Run("Increment rejects a non-numeric field", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "usuarios", "u1", Fields{"monedas": "muchas"}))

		err := s.Increment(ctx, "usuarios", "u1", "monedas", 5)
		assert.ErrorIs(t, err, ErrInvalidValue)

		doc, err := s.Get(ctx, "usuarios", "u1")
		require.NoError(t, err)
		assert.Equal(t, "muchas", doc.Fields["monedas"])
	})

	t.Run("Increment treats null as zero", func(t *testing.T) {
		s := open(t)

		require.NoError(t, s.Set(ctx, "usuarios", "u1", Fields{"monedas": nil}))
		require.NoError(t, s.Increment(ctx, "usuarios", "u1", "monedas", 4))

		doc, err := s.Get(ctx, "usuarios", "u1")
		require.NoError(t, err)
		assert.Equal(t, float64(4), doc.Fields["monedas"])
	})

	t.Run("Increment is atomic under concurrency", func(t *testing.T) {
		s := open(t)

		const workers = 20
		var wg sync.WaitGroup
		errs := make(chan error, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				errs <- s.Increment(ctx, "usuarios", "u1", "monedas", 1)
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			require.NoError(t, err)
		}

		doc, err := s.Get(ctx, "usuarios", "u1")
		require.NoError(t, err)
		assert.Equal(t, float64(workers), doc.Fields["monedas"])
	})

	t.Run("Create under concurrency lets exactly one writer win", func(t *testing.T) {
		s := open(t)

		const writers = 10
		var wg sync.WaitGroup
		results := make(chan error, writers)

		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				results <- s.Create(ctx, "seguimiento_habitos", "h_1_2025-01-07", Fields{"nota": fmt.Sprint(n)})
			}(i)
		}
		wg.Wait()
		close(results)

		wins := 0
		for err := range results {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, ErrAlreadyExists)
		}
		assert.Equal(t, 1, wins)
	})
}
