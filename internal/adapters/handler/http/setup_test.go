package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/docstore"
	adapterHTTP "github.com/comitanigiacomo/kanso-habitos/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-habitos/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-habitos/internal/core/services"
)

var errStoreDown = errors.New("store unavailable")

// brokenStore fails every read while writes still reach the memory store.
type brokenStore struct {
	*docstore.MemoryStore
}

func (s brokenStore) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	return nil, errStoreDown
}

func (s brokenStore) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	return nil, errStoreDown
}

func (s brokenStore) Ping(ctx context.Context) error {
	return errStoreDown
}

func today() string {
	return time.Now().Format("2006-01-02")
}

func setupRouter(t *testing.T, store docstore.Store) *gin.Engine {
	t.Helper()
	return adapterHTTP.NewRouter(routerDeps(store))
}

func routerDeps(store docstore.Store) adapterHTTP.RouterDependencies {
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	habitRepo := repository.NewDocumentHabitRepository(store)
	categoryRepo := repository.NewDocumentCategoryRepository(store)
	trackingRepo := repository.NewDocumentTrackingRepository(store)
	rewardRepo := repository.NewDocumentRewardRepository(store)

	return adapterHTTP.RouterDependencies{
		HabitHandler:    adapterHTTP.NewHabitHandler(services.NewHabitService(habitRepo, trackingRepo), logger),
		CategoryHandler: adapterHTTP.NewCategoryHandler(services.NewCategoryService(categoryRepo, habitRepo), logger),
		TrackingHandler: adapterHTTP.NewTrackingHandler(services.NewTrackingService(habitRepo, trackingRepo), logger),
		StatsHandler:    adapterHTTP.NewStatsHandler(services.NewStatsService(trackingRepo, logger)),
		RewardHandler:   adapterHTTP.NewRewardHandler(services.NewRewardService(rewardRepo), logger),
		Store:           store,
		Logger:          logger,
		StartTime:       time.Now(),
	}
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func createHabit(t *testing.T, router http.Handler, userID, name, category string) string {
	t.Helper()
	body := `{"id_usuario":"` + userID + `","nombre_habito":"` + name + `","id_categoria":"` + category + `","frecuencia":"diaria"}`
	w := do(router, http.MethodPost, "/habitos", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	habit := decode(t, w)["habito"].(map[string]any)
	return habit["id_habito"].(string)
}
