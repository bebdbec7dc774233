package routeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/davidvelascogarcia/hns/grid"
	"github.com/davidvelascogarcia/hns/infrastruture/mapstore"
	"github.com/davidvelascogarcia/hns/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubMapRepo serves maps from in-memory status rows, building a fresh grid
// per call like the real repositories.
type stubMapRepo struct {
	maps map[string][][]grid.Status
}

func (s *stubMapRepo) ByName(_ context.Context, name string) (*grid.Grid, error) {
	rows, found := s.maps[name]
	if !found {
		return nil, fmt.Errorf("%w: %q", mapstore.ErrMapNotFound, name)
	}
	return grid.New(rows)
}

func openRows(height, width int) [][]grid.Status {
	rows := make([][]grid.Status, height)
	for r := range rows {
		rows[r] = make([]grid.Status, width)
	}
	return rows
}

func setupRouter(t *testing.T, repo *stubMapRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewController(repo, service.NewNavigator(nil, nil)).Register(router.Group("/api/v1"))
	return router
}

func planBody(t *testing.T, mapName string, init, goal grid.Position) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(PlanRequest{
		Map:  mapName,
		Init: Coordinate{Row: &init.Row, Col: &init.Col},
		Goal: Coordinate{Row: &goal.Row, Col: &goal.Col},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestPlanEndpoint(t *testing.T) {
	enclosed := openRows(5, 5)
	enclosed[1][2] = grid.Occupied
	enclosed[3][2] = grid.Occupied
	enclosed[2][1] = grid.Occupied
	enclosed[2][3] = grid.Occupied

	repo := &stubMapRepo{maps: map[string][][]grid.Status{
		"open.csv":     openRows(10, 10),
		"enclosed.csv": enclosed,
	}}
	router := setupRouter(t, repo)

	t.Run("plans a route", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/v1/routes/",
			planBody(t, "open.csv", grid.Position{Row: 2, Col: 2}, grid.Position{Row: 7, Col: 6}))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response PlanResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, string(service.StatusCompleted), response.Status)
		assert.Equal(t, 9, response.Steps)
		require.NotEmpty(t, response.Route)
		assert.Equal(t, "GOAL", response.Route[len(response.Route)-1].Move)
		assert.Nil(t, response.StalledAt)
	})

	t.Run("reports deadlocks with the partial route", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/v1/routes/",
			planBody(t, "enclosed.csv", grid.Position{Row: 2, Col: 2}, grid.Position{Row: 4, Col: 4}))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

		var response PlanResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, string(service.StatusDeadlocked), response.Status)
		assert.Empty(t, response.Route)
		require.NotNil(t, response.StalledAt)
		assert.Equal(t, 2, *response.StalledAt.Row)
		assert.Equal(t, 2, *response.StalledAt.Col)
	})

	t.Run("unknown map", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/v1/routes/",
			planBody(t, "missing.csv", grid.Position{Row: 1, Col: 1}, grid.Position{Row: 2, Col: 2}))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("rejects malformed requests", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/v1/routes/", bytes.NewBufferString(`{"map":"open.csv"}`))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("rejects unavailable targets", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodPost, "/api/v1/routes/",
			planBody(t, "enclosed.csv", grid.Position{Row: 1, Col: 2}, grid.Position{Row: 4, Col: 4}))
		request.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestMapInfoEndpoint(t *testing.T) {
	repo := &stubMapRepo{maps: map[string][][]grid.Status{"open.csv": openRows(3, 4)}}
	router := setupRouter(t, repo)

	t.Run("describes a map", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/maps/open.csv", nil)
		router.ServeHTTP(recorder, request)

		require.Equal(t, http.StatusOK, recorder.Code)

		var response MapResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.Equal(t, "open.csv", response.Name)
		assert.Equal(t, 4, response.Width)
		assert.Equal(t, 3, response.Height)
		assert.NotEmpty(t, response.Render)
	})

	t.Run("unknown map", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		request := httptest.NewRequest(http.MethodGet, "/api/v1/maps/missing.csv", nil)
		router.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
