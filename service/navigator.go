package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/davidvelascogarcia/hns/grid"
	"github.com/davidvelascogarcia/hns/planner"
	"github.com/davidvelascogarcia/hns/service/i"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Navigation-related errors.
var (
	ErrControllerFailed = errors.New("step controller exchange failed")
	ErrStepLimit        = errors.New("step limit reached before goal")
)

// RunStatus is the terminal state of a planning run.
type RunStatus string

const (
	StatusCompleted        RunStatus = "Completed"
	StatusDeadlocked       RunStatus = "Deadlocked"
	StatusControllerFailed RunStatus = "ControllerFailed"
	// StatusFailed marks a run aborted by a broken internal invariant,
	// as opposed to a routing deadlock.
	StatusFailed RunStatus = "Failed"
)

// Step is one route entry: the position entered and the move that entered it.
type Step struct {
	Position grid.Position `json:"position"`
	Move     grid.Move     `json:"move"`
}

// Result is the outcome of one planning run. On failure it still carries
// the partial route and the position where the run stalled.
type Result struct {
	RunID     uuid.UUID
	Status    RunStatus
	Route     []Step
	StepCount int
	Elapsed   time.Duration
	StalledAt *grid.Position
	Grid      *grid.Grid // final grid state, with the crossed trail marked
}

// Navigator drives the step loop: it consults the planner once per step,
// owns the route and the visited set, and performs the acknowledgement
// exchange with the external executor when one is configured.
type Navigator struct {
	controller i.StepController // nil when the external channel is disabled
	logger     *logrus.Entry
}

// NewNavigator creates a route driver. A nil controller disables the
// per-step acknowledgement exchange; a nil logger discards log output.
func NewNavigator(controller i.StepController, logger *logrus.Entry) *Navigator {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = logrus.NewEntry(l)
	}
	return &Navigator{
		controller: controller,
		logger:     logger,
	}
}

// Plan computes a route from start to goal over the given grid. The grid is
// cloned first, so the caller's copy stays untouched and repeated calls with
// identical inputs yield identical routes. Planning is strictly sequential:
// no step begins before the previous step's acknowledgement arrived.
func (n *Navigator) Plan(ctx context.Context, g *grid.Grid, start, goal grid.Position) (*Result, error) {
	began := time.Now()
	res := &Result{RunID: uuid.New()}

	if !g.InBounds(start) || !g.InBounds(goal) {
		return nil, grid.ErrOutOfBounds
	}

	run := g.Clone()
	res.Grid = run

	visited := map[grid.Position]struct{}{start: {}}
	traversable := func(p grid.Position) bool {
		if _, seen := visited[p]; seen {
			return false
		}
		return run.IsTraversable(p)
	}

	log := n.logger.WithField("run", res.RunID)
	log.WithFields(logrus.Fields{"start": start.String(), "goal": goal.String()}).Info("planning route")

	current := start
	// The no-revisit invariant bounds the route by the cell count; the cap
	// guards termination even if that invariant is ever broken.
	for step := 0; step <= run.CellCount(); step++ {
		move, err := planner.Next(current, goal, traversable)
		if err != nil {
			return n.finish(res, began, StatusDeadlocked, current,
				fmt.Errorf("%w at %s after %d steps", err, current, res.StepCount))
		}

		if move == grid.ReachedGoal {
			res.Route = append(res.Route, Step{Position: current, Move: move})
			if err := n.exchange(ctx, move); err != nil {
				return n.finish(res, began, StatusControllerFailed, current, err)
			}
			log.WithField("steps", res.StepCount).Info("goal achieved")
			return n.finish(res, began, StatusCompleted, current, nil)
		}

		next := move.Apply(current)
		res.Route = append(res.Route, Step{Position: next, Move: move})
		res.StepCount++
		visited[next] = struct{}{}
		if err := run.MarkVisited(next); err != nil {
			// Traversability was checked by the planner, so this is a
			// broken invariant, not a routing deadlock.
			return n.finish(res, began, StatusFailed, next, fmt.Errorf("marking %s: %w", next, err))
		}

		log.WithFields(logrus.Fields{
			"step":     res.StepCount,
			"command":  move.Token(),
			"position": next.String(),
		}).Info("step planned")

		if err := n.exchange(ctx, move); err != nil {
			return n.finish(res, began, StatusControllerFailed, next, err)
		}

		current = next
	}

	return n.finish(res, began, StatusDeadlocked, current, ErrStepLimit)
}

// exchange sends the move token to the external executor and blocks for
// its acknowledgement. A nil controller acknowledges immediately.
func (n *Navigator) exchange(ctx context.Context, move grid.Move) error {
	if n.controller == nil {
		return nil
	}
	if err := n.controller.SendAndAwait(ctx, move.Token()); err != nil {
		return fmt.Errorf("%w: %w", ErrControllerFailed, err)
	}
	return nil
}

func (n *Navigator) finish(res *Result, began time.Time, status RunStatus, at grid.Position, err error) (*Result, error) {
	res.Status = status
	res.Elapsed = time.Since(began)
	if err != nil {
		res.StalledAt = &at
		n.logger.WithFields(logrus.Fields{
			"run":      res.RunID,
			"status":   status,
			"position": at.String(),
		}).Error(err.Error())
	}
	return res, err
}
