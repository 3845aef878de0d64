package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/recurrence"
	"github.com/tasktreasure/tasktreasure/internal/store"
	"github.com/tasktreasure/tasktreasure/internal/websocket"
)

type ChoreHandler struct {
	choreStore *store.ChoreStore
	confirm    confirmer
	hub        *websocket.Hub
	loc        *time.Location
	logger     *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, confirm confirmer, hub *websocket.Hub, loc *time.Location, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{choreStore: cs, confirm: confirm, hub: hub, loc: loc, logger: logger}
}

func (h *ChoreHandler) publish(r *http.Request, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Publish(parentID(r), msg)
	}
}

type choreRequest struct {
	Name       *string   `json:"name"`
	Value      *int      `json:"value"`
	RewardType *string   `json:"reward_type"`
	Days       *[]string `json:"days"`
	Frequency  *int      `json:"frequency"`
	Icon       *string   `json:"icon"`
}

// validate normalizes the request in place and returns the first problem.
func (req *choreRequest) validate() (model.RewardType, string) {
	req.Name = trimmed(req.Name)
	req.Icon = trimmed(req.Icon)
	if req.Name != nil && *req.Name == "" {
		return "", "name cannot be empty"
	}
	if req.Value != nil && *req.Value < 0 {
		return "", "value cannot be negative"
	}
	if req.Frequency != nil && *req.Frequency < 1 {
		return "", "frequency must be at least 1"
	}
	if req.Days != nil {
		days, err := recurrence.NormalizeDays(*req.Days)
		if err != nil {
			return "", err.Error()
		}
		req.Days = &days
	}
	var rt model.RewardType
	if req.RewardType != nil {
		parsed, err := model.ParseRewardType(*req.RewardType)
		if err != nil {
			return "", err.Error()
		}
		rt = parsed
	}
	return rt, ""
}

// List returns the child's chores with their status and whether they are
// done on ?date (default today).
func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	chores, err := h.choreStore.List(r.Context(), parentID(r), r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, "failed to list chores", err)
		return
	}
	writeJSON(w, http.StatusOK, chore.WithStatus(chores, chore.DateKey(date)))
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rt, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	if req.Name == nil {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	in := store.ChoreInput{
		Name:       *req.Name,
		RewardType: rt,
		AssignedBy: parentID(r),
	}
	if req.Value != nil {
		in.Value = *req.Value
	}
	if req.Days != nil {
		in.Days = *req.Days
	}
	if req.Frequency != nil {
		in.Frequency = *req.Frequency
	}
	if req.Icon != nil {
		in.Icon = *req.Icon
	}

	childID := r.PathValue("id")
	created, err := h.choreStore.Create(r.Context(), parentID(r), childID, in)
	if err != nil {
		storeError(w, h.logger, "failed to create chore", err)
		return
	}

	h.publish(r, websocket.NewMessage(websocket.ChoresTopic(childID), "chore", "created", created.ID, created))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req choreRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rt, problem := req.validate()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}

	u := store.ChoreUpdate{
		Name:      req.Name,
		Value:     req.Value,
		Days:      req.Days,
		Frequency: req.Frequency,
		Icon:      req.Icon,
	}
	if req.RewardType != nil {
		u.RewardType = &rt
	}

	childID := r.PathValue("id")
	updated, err := h.choreStore.Update(r.Context(), parentID(r), childID, r.PathValue("choreId"), u)
	if err != nil {
		storeError(w, h.logger, "failed to update chore", err)
		return
	}

	h.publish(r, websocket.NewMessage(websocket.ChoresTopic(childID), "chore", "updated", updated.ID, updated))
	writeJSON(w, http.StatusOK, updated)
}

// Delete requires the parent's password, like deleting a child.
func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireConfirmation(w, r, h.confirm, h.logger) {
		return
	}

	childID, choreID := r.PathValue("id"), r.PathValue("choreId")
	if err := h.choreStore.Delete(r.Context(), parentID(r), childID, choreID); err != nil {
		storeError(w, h.logger, "failed to delete chore", err)
		return
	}

	h.publish(r, websocket.NewMessage(websocket.ChoresTopic(childID), "chore", "deleted", choreID, nil))
	w.WriteHeader(http.StatusNoContent)
}

type toggleResponse struct {
	Done  bool                  `json:"done"`
	Date  string                `json:"date"`
	Chore chore.ChoreWithStatus `json:"chore"`
	Child model.Child           `json:"child"`
}

// Toggle flips the chore's completion for ?date (default today) and moves
// its reward into or out of the child's balance.
func (h *ChoreHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	dateKey := chore.DateKey(date)

	childID, choreID := r.PathValue("id"), r.PathValue("choreId")
	tr, err := h.choreStore.ToggleCompletion(r.Context(), parentID(r), childID, choreID, dateKey)
	if err != nil {
		storeError(w, h.logger, "failed to toggle chore", err)
		return
	}

	resp := toggleResponse{
		Done:  tr.Done,
		Date:  dateKey,
		Chore: chore.WithStatus([]model.Chore{tr.Chore}, dateKey)[0],
		Child: tr.Child,
	}

	action := "uncompleted"
	if tr.Done {
		action = "completed"
	}
	h.publish(r, websocket.NewMessage(websocket.ChoresTopic(childID), "chore", action, choreID, resp.Chore))
	h.publish(r, websocket.NewMessage(websocket.ChildrenTopic, "child", "updated", childID, tr.Child))

	writeJSON(w, http.StatusOK, resp)
}

// Reset zeroes every chore counter of the child, starting a new week.
func (h *ChoreHandler) Reset(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	n, err := h.choreStore.ResetCompletions(r.Context(), parentID(r), childID)
	if err != nil {
		storeError(w, h.logger, "failed to reset chores", err)
		return
	}

	h.publish(r, websocket.NewMessage(websocket.ChoresTopic(childID), "chore", "reset", "", nil))
	writeJSON(w, http.StatusOK, map[string]int64{"reset": n})
}
