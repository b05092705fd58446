package productionplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kilianp07/powerplan/core/dispatch"
	"github.com/kilianp07/powerplan/core/logger"
	"github.com/kilianp07/powerplan/core/model"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
)

// MsgNoSolution is returned when no plan can serve the load.
const MsgNoSolution = "Unable to distribute load. No solution found."

// maxBody bounds the request payload.
const maxBody = 1 << 20

// Solver computes production plans.
type Solver interface {
	Solve(ctx context.Context, req model.Request) (dispatch.Plan, error)
}

type errorBody struct {
	Msg string `json:"msg"`
}

// NewHandler returns an HTTP handler computing production plans via
// POST /productionplan. The response is the list of allocations, or the
// full plan when the detail query parameter is true. timeout bounds one
// solve when positive.
func NewHandler(s Solver, timeout time.Duration, log logger.Logger) http.Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSON(w, http.StatusMethodNotAllowed, errorBody{Msg: "method not allowed"})
			return
		}
		payload, err := model.DecodePayload(http.MaxBytesReader(w, r.Body, maxBody))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Msg: err.Error()})
			return
		}
		req, err := payload.Request()
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Msg: err.Error()})
			return
		}

		ctx := r.Context()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		plan, err := s.Solve(ctx, req)
		if err != nil {
			status, msg := errorStatus(err)
			if status == http.StatusInternalServerError {
				log.Errorf("plan %s: %v", plan.ID, err)
				coremon.CaptureException(err, map[string]string{"plan_id": plan.ID, "module": "api"})
			}
			writeJSON(w, status, errorBody{Msg: msg})
			return
		}
		if r.URL.Query().Get("detail") == "true" {
			writeJSON(w, http.StatusOK, plan)
			return
		}
		writeJSON(w, http.StatusOK, plan.Allocations)
	})
}

func errorStatus(err error) (int, string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, verr.Msg
	case errors.Is(err, dispatch.ErrFleetTooLarge):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, dispatch.ErrInfeasible), errors.Is(err, dispatch.ErrNoFeasibleCombination):
		return http.StatusUnprocessableEntity, MsgNoSolution
	case errors.Is(err, dispatch.ErrSearchBudgetExceeded),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, fmt.Sprintf("%s Search aborted: %v.", MsgNoSolution, err)
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Recoverer turns a panic of next into a 500 response and reports it.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				coremon.Current().CapturePanic(v, map[string]string{"path": r.URL.Path, "module": "api"})
				writeJSON(w, http.StatusInternalServerError, errorBody{Msg: "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
