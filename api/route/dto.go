// Package routeapi exposes route planning over HTTP.
package routeapi

// Coordinate is a (row, column) pair in a request.
type Coordinate struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// PlanRequest asks for a route across a stored map.
type PlanRequest struct {
	Map  string     `json:"map" binding:"required"`
	Init Coordinate `json:"init" binding:"required"`
	Goal Coordinate `json:"goal" binding:"required"`
}

// RouteStep is one entry of the planned route.
type RouteStep struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Move string `json:"move"`
}

// PlanResponse reports the run outcome. On failure the route is partial
// and StalledAt names the position where the run stopped.
type PlanResponse struct {
	RunID     string      `json:"run_id"`
	Status    string      `json:"status"`
	Steps     int         `json:"steps"`
	ElapsedMS int64       `json:"elapsed_ms"`
	Route     []RouteStep `json:"route"`
	StalledAt *Coordinate `json:"stalled_at,omitempty"`
}

// MapResponse describes a stored map.
type MapResponse struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Render string `json:"render"`
}
