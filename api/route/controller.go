package routeapi

import (
	"errors"
	"net/http"

	"github.com/davidvelascogarcia/hns/grid"
	"github.com/davidvelascogarcia/hns/infrastruture/mapstore"
	"github.com/davidvelascogarcia/hns/service"
	"github.com/davidvelascogarcia/hns/service/i"
	"github.com/gin-gonic/gin"
)

// Controller serves route planning over stored maps.
type Controller struct {
	maps      i.MapRepo
	navigator *service.Navigator
}

// NewController initializes a route planning controller.
func NewController(maps i.MapRepo, navigator *service.Navigator) *Controller {
	return &Controller{
		maps:      maps,
		navigator: navigator,
	}
}

// Register registers the controller's routes.
func (rc *Controller) Register(route *gin.RouterGroup) {
	routes := route.Group("/routes")
	{
		routes.POST("/", rc.plan)
	}
	maps := route.Group("/maps")
	{
		maps.GET("/:name", rc.mapInfo)
	}
}

// plan handles route planning requests.
func (rc *Controller) plan(ctx *gin.Context) {
	var request PlanRequest
	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	g, err := rc.maps.ByName(ctx, request.Map)
	if err != nil {
		if errors.Is(err, mapstore.ErrMapNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	start := grid.Position{Row: *request.Init.Row, Col: *request.Init.Col}
	goal := grid.Position{Row: *request.Goal.Row, Col: *request.Goal.Col}
	if err := g.AssignTargets(start, goal); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := rc.navigator.Plan(ctx, g, start, goal)
	if err != nil && result == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	runsTotal.WithLabelValues(string(result.Status)).Inc()
	routeSteps.Observe(float64(result.StepCount))

	status := http.StatusOK
	switch result.Status {
	case service.StatusDeadlocked:
		status = http.StatusUnprocessableEntity
	case service.StatusControllerFailed:
		status = http.StatusBadGateway
	case service.StatusFailed:
		status = http.StatusInternalServerError
	}

	ctx.JSON(status, toPlanResponse(result))
}

// mapInfo describes a stored map.
func (rc *Controller) mapInfo(ctx *gin.Context) {
	name := ctx.Params.ByName("name")

	g, err := rc.maps.ByName(ctx, name)
	if err != nil {
		if errors.Is(err, mapstore.ErrMapNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, MapResponse{
		Name:   name,
		Width:  g.Width(),
		Height: g.Height(),
		Render: g.String(),
	})
}

func toPlanResponse(result *service.Result) PlanResponse {
	response := PlanResponse{
		RunID:     result.RunID.String(),
		Status:    string(result.Status),
		Steps:     result.StepCount,
		ElapsedMS: result.Elapsed.Milliseconds(),
		Route:     make([]RouteStep, 0, len(result.Route)),
	}
	for _, step := range result.Route {
		response.Route = append(response.Route, RouteStep{
			Row:  step.Position.Row,
			Col:  step.Position.Col,
			Move: step.Move.Token(),
		})
	}
	if result.StalledAt != nil {
		row, col := result.StalledAt.Row, result.StalledAt.Col
		response.StalledAt = &Coordinate{Row: &row, Col: &col}
	}
	return response
}
