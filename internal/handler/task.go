package handler

import (
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/recurrence"
	"github.com/tasktreasure/tasktreasure/internal/store"
	"github.com/tasktreasure/tasktreasure/internal/websocket"
)

type TaskHandler struct {
	taskStore *store.TaskStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, hub *websocket.Hub, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{taskStore: ts, hub: hub, logger: logger}
}

func (h *TaskHandler) publish(r *http.Request, msg websocket.Message) {
	if h.hub != nil {
		h.hub.Publish(parentID(r), msg)
	}
}

type taskRequest struct {
	Name         string `json:"name"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	AllDay       bool   `json:"all_day"`
	Type         string `json:"type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	RepeatOption string `json:"repeat_option"`
	Icon         string `json:"icon"`
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// toTask validates the request and builds the task it describes.
func (req taskRequest) toTask() (model.Task, string) {
	t := model.Task{
		Name:         strings.TrimSpace(req.Name),
		AllDay:       req.AllDay,
		Type:         model.TaskType(strings.TrimSpace(req.Type)),
		RepeatOption: strings.ToLower(strings.TrimSpace(req.RepeatOption)),
		Icon:         strings.TrimSpace(req.Icon),
	}
	if t.Name == "" {
		return t, "name is required"
	}
	if t.Type == "" {
		t.Type = model.TaskOneTime
	}

	if !t.AllDay {
		for _, clock := range []string{req.StartTime, req.EndTime} {
			if clock != "" && !clockPattern.MatchString(clock) {
				return t, "times must be HH:MM"
			}
		}
		t.StartTime, t.EndTime = req.StartTime, req.EndTime
		if t.StartTime != "" && t.EndTime != "" && t.EndTime < t.StartTime {
			return t, "end time precedes start time"
		}
	}

	start, err := chore.ParseDateKey(req.StartDate)
	if err != nil {
		return t, "start_date must be YYYY-MM-DD"
	}
	t.StartDate = start
	if req.EndDate != "" {
		end, err := chore.ParseDateKey(req.EndDate)
		if err != nil {
			return t, "end_date must be YYYY-MM-DD"
		}
		t.EndDate = &end
	}

	if err := recurrence.ValidateTask(t); err != nil {
		return t, err.Error()
	}
	return t, ""
}

type taskResponse struct {
	model.Task
	Recurrence string `json:"recurrence"`
}

func describe(t model.Task) taskResponse {
	summary := recurrence.Never.Describe(t.StartDate)
	if t.Type == model.TaskRecurring {
		if rep, err := recurrence.ParseRepeat(t.RepeatOption); err == nil {
			summary = rep.Describe(t.StartDate)
		}
	}
	return taskResponse{Task: t, Recurrence: summary}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskStore.List(r.Context(), parentID(r), r.PathValue("id"))
	if err != nil {
		storeError(w, h.logger, "failed to list tasks", err)
		return
	}
	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, describe(t))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, problem := req.toTask()
	if problem != "" {
		writeError(w, http.StatusBadRequest, problem)
		return
	}
	t.AssignedBy = parentID(r)

	childID := r.PathValue("id")
	created, err := h.taskStore.Create(r.Context(), parentID(r), childID, t)
	if err != nil {
		storeError(w, h.logger, "failed to create task", err)
		return
	}

	resp := describe(*created)
	h.publish(r, websocket.NewMessage(websocket.TasksTopic(childID), "task", "created", created.ID, resp))
	writeJSON(w, http.StatusCreated, resp)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	childID, taskID := r.PathValue("id"), r.PathValue("taskId")
	if err := h.taskStore.Delete(r.Context(), parentID(r), childID, taskID); err != nil {
		storeError(w, h.logger, "failed to delete task", err)
		return
	}

	h.publish(r, websocket.NewMessage(websocket.TasksTopic(childID), "task", "deleted", taskID, nil))
	w.WriteHeader(http.StatusNoContent)
}

