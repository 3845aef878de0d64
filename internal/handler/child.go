package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/store"
	"github.com/tasktreasure/tasktreasure/internal/websocket"
)

type ChildHandler struct {
	childStore *store.ChildStore
	choreStore *store.ChoreStore
	confirm    confirmer
	hub        *websocket.Hub
	loc        *time.Location
	logger     *slog.Logger
}

func NewChildHandler(cs *store.ChildStore, chs *store.ChoreStore, confirm confirmer, hub *websocket.Hub, loc *time.Location, logger *slog.Logger) *ChildHandler {
	return &ChildHandler{childStore: cs, choreStore: chs, confirm: confirm, hub: hub, loc: loc, logger: logger}
}

func (h *ChildHandler) publish(r *http.Request, action string, c *model.Child, id string) {
	if h.hub == nil {
		return
	}
	var data any
	if c != nil {
		data = c
	}
	h.hub.Publish(parentID(r), websocket.NewMessage(websocket.ChildrenTopic, "child", action, id, data))
}

type childRequest struct {
	Name                 *string `json:"name"`
	Avatar               *string `json:"avatar"`
	WeeklyGoal           *int    `json:"weekly_goal"`
	WeeklyScreenTimeGoal *int    `json:"weekly_screen_time_goal"`
}

func validGoal(p *int) bool {
	return p == nil || *p >= 0
}

func (h *ChildHandler) List(w http.ResponseWriter, r *http.Request) {
	children, err := h.childStore.List(r.Context(), parentID(r))
	if err != nil {
		storeError(w, h.logger, "failed to list children", err)
		return
	}
	if children == nil {
		children = []model.Child{}
	}
	writeJSON(w, http.StatusOK, children)
}

func (h *ChildHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := trimmed(req.Name)
	if name == nil || *name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if !validGoal(req.WeeklyGoal) || !validGoal(req.WeeklyScreenTimeGoal) {
		writeError(w, http.StatusBadRequest, "goals cannot be negative")
		return
	}

	in := store.ChildInput{
		Name:                 *name,
		WeeklyGoal:           req.WeeklyGoal,
		WeeklyScreenTimeGoal: req.WeeklyScreenTimeGoal,
	}
	if req.Avatar != nil {
		in.Avatar = strings.TrimSpace(*req.Avatar)
	}

	child, err := h.childStore.Create(r.Context(), parentID(r), in)
	if err != nil {
		storeError(w, h.logger, "failed to create child", err)
		return
	}

	h.publish(r, "created", child, child.ID)
	writeJSON(w, http.StatusCreated, child)
}

func (h *ChildHandler) Get(w http.ResponseWriter, r *http.Request) {
	child, ok := h.loadChild(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, child)
}

// loadChild fetches the {id} child of the signed-in parent, writing 404 when
// it does not exist.
func (h *ChildHandler) loadChild(w http.ResponseWriter, r *http.Request) (*model.Child, bool) {
	child, err := h.childStore.Get(r.Context(), parentID(r), r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, "failed to get child", err)
		return nil, false
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return nil, false
	}
	return child, true
}

func (h *ChildHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	name := trimmed(req.Name)
	if name != nil && *name == "" {
		writeError(w, http.StatusBadRequest, "name cannot be empty")
		return
	}
	if !validGoal(req.WeeklyGoal) || !validGoal(req.WeeklyScreenTimeGoal) {
		writeError(w, http.StatusBadRequest, "goals cannot be negative")
		return
	}

	child, err := h.childStore.Update(r.Context(), parentID(r), r.PathValue("id"), store.ChildUpdate{
		Name:                 name,
		Avatar:               trimmed(req.Avatar),
		WeeklyGoal:           req.WeeklyGoal,
		WeeklyScreenTimeGoal: req.WeeklyScreenTimeGoal,
	})
	if err != nil {
		storeError(w, h.logger, "failed to update child", err)
		return
	}

	h.publish(r, "updated", child, child.ID)
	writeJSON(w, http.StatusOK, child)
}

// SetGoals replaces both weekly goals. A missing screen-time goal falls back
// to the default.
func (h *ChildHandler) SetGoals(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WeeklyGoal           *int `json:"weekly_goal"`
		WeeklyScreenTimeGoal *int `json:"weekly_screen_time_goal"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.WeeklyGoal == nil {
		writeError(w, http.StatusBadRequest, "weekly_goal is required")
		return
	}
	if !validGoal(req.WeeklyGoal) || !validGoal(req.WeeklyScreenTimeGoal) {
		writeError(w, http.StatusBadRequest, "goals cannot be negative")
		return
	}
	stGoal := chore.DefaultScreenTimeGoal
	if req.WeeklyScreenTimeGoal != nil {
		stGoal = *req.WeeklyScreenTimeGoal
	}

	child, err := h.childStore.Update(r.Context(), parentID(r), r.PathValue("id"), store.ChildUpdate{
		WeeklyGoal:           req.WeeklyGoal,
		WeeklyScreenTimeGoal: &stGoal,
	})
	if err != nil {
		storeError(w, h.logger, "failed to set goals", err)
		return
	}

	h.publish(r, "updated", child, child.ID)
	writeJSON(w, http.StatusOK, child)
}

// AdjustSavings moves delta into (or, negative, out of) the child's savings.
// Savings never drop below zero.
func (h *ChildHandler) AdjustSavings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta int `json:"delta"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == 0 {
		writeError(w, http.StatusBadRequest, "delta must be non-zero")
		return
	}

	child, err := h.childStore.IncrementSavings(r.Context(), parentID(r), r.PathValue("id"), req.Delta)
	if err != nil {
		storeError(w, h.logger, "failed to adjust savings", err)
		return
	}

	h.publish(r, "updated", child, child.ID)
	writeJSON(w, http.StatusOK, child)
}

// Delete removes a child with all its chores and tasks. It requires the
// parent's password.
func (h *ChildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireConfirmation(w, r, h.confirm, h.logger) {
		return
	}

	id := r.PathValue("id")
	if err := h.childStore.Delete(r.Context(), parentID(r), id); err != nil {
		storeError(w, h.logger, "failed to delete child", err)
		return
	}

	h.publish(r, "deleted", nil, id)
	w.WriteHeader(http.StatusNoContent)
}

type progressResponse struct {
	chore.GoalProgress
	Chores []chore.ChoreWithStatus `json:"chores"`
}

// Progress reports the child's earnings against the weekly goals, with each
// chore's completion status for ?date (default today).
func (h *ChildHandler) Progress(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	child, ok := h.loadChild(w, r)
	if !ok {
		return
	}

	chores, err := h.choreStore.List(r.Context(), parentID(r), child.ID)
	if err != nil {
		storeError(w, h.logger, "failed to list chores", err)
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{
		GoalProgress: chore.ComputeGoalProgress(*child, chores),
		Chores:       chore.WithStatus(chores, chore.DateKey(date)),
	})
}
