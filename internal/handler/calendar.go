package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/calendar"
	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/recurrence"
	"github.com/tasktreasure/tasktreasure/internal/schedule"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

type CalendarHandler struct {
	loader     *calendar.Loader
	childStore *store.ChildStore
	loc        *time.Location
	logger     *slog.Logger
}

func NewCalendarHandler(loader *calendar.Loader, cs *store.ChildStore, loc *time.Location, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{loader: loader, childStore: cs, loc: loc, logger: logger}
}

// loadError distinguishes an abandoned request from a failed load.
func (h *CalendarHandler) loadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(r.Context().Err(), context.Canceled):
		// Client went away; nobody is listening for a response.
	case calendar.IsTimeout(err):
		h.logger.Warn("calendar load timed out", "error", err)
		writeJSON(w, http.StatusGatewayTimeout, errorBody{Error: "calendar load timed out", Retryable: true})
	default:
		storeError(w, h.logger, "failed to load calendar", err)
	}
}

// requireChild writes 404 unless {id} is a child of the signed-in parent.
func (h *CalendarHandler) requireChild(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	child, err := h.childStore.Get(r.Context(), parentID(r), id)
	if err != nil {
		storeError(w, h.logger, "failed to get child", err)
		return "", false
	}
	if child == nil {
		writeError(w, http.StatusNotFound, "child not found")
		return "", false
	}
	return id, true
}

// ChildWeek returns the Monday-first week containing ?date for one child.
func (h *CalendarHandler) ChildWeek(w http.ResponseWriter, r *http.Request) {
	ref, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	childID, ok := h.requireChild(w, r)
	if !ok {
		return
	}

	week, err := h.loader.ChildWeek(r.Context(), parentID(r), childID, ref)
	if err != nil {
		h.loadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, week)
}

type dayResponse struct {
	Date  string       `json:"date"`
	Label string       `json:"label"`
	Items []model.Item `json:"items"`
}

// ChildDay lists what one child has on ?date.
func (h *CalendarHandler) ChildDay(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}
	childID, ok := h.requireChild(w, r)
	if !ok {
		return
	}

	items, err := h.loader.ChildItems(r.Context(), parentID(r), childID)
	if err != nil {
		h.loadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dayResponse{
		Date:  chore.DateKey(date),
		Label: recurrence.Label(date.Weekday()),
		Items: schedule.Day(items, date),
	})
}

// FamilyWeek returns the week containing ?date for every child, loaded in
// parallel. Children whose load failed are listed under "failed".
func (h *CalendarHandler) FamilyWeek(w http.ResponseWriter, r *http.Request) {
	ref, err := dateParam(r, h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	res, err := h.loader.Week(r.Context(), parentID(r), ref)
	if err != nil {
		h.loadError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
