package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tasktreasure/tasktreasure/internal/chore"
	"github.com/tasktreasure/tasktreasure/internal/model"
	"github.com/tasktreasure/tasktreasure/internal/store"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestStoreError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantRetryable bool
	}{
		{"not found", fmt.Errorf("update child: %w", store.ErrNotFound), http.StatusNotFound, false},
		{"bad date key", fmt.Errorf("%w: %q", chore.ErrInvalidDateKey, "x"), http.StatusBadRequest, false},
		{"anything else", errors.New("database is locked"), http.StatusInternalServerError, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			storeError(rec, discard, "failed to do it", tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Retryable != tt.wantRetryable {
				t.Errorf("retryable = %v, want %v", body.Retryable, tt.wantRetryable)
			}
		})
	}
}

func TestDateParam(t *testing.T) {
	loc := time.FixedZone("CET", 3600)

	r := httptest.NewRequest(http.MethodGet, "/?date=2025-01-08", nil)
	got, err := dateParam(r, loc)
	if err != nil {
		t.Fatalf("dateParam: %v", err)
	}
	if want := time.Date(2025, 1, 8, 0, 0, 0, 0, loc); !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	got, err = dateParam(r, loc)
	if err != nil {
		t.Fatalf("dateParam default: %v", err)
	}
	if got.Hour() != 0 || got.Location() != loc {
		t.Errorf("default date = %v, want midnight in %v", got, loc)
	}

	r = httptest.NewRequest(http.MethodGet, "/?date=8+jan", nil)
	if _, err := dateParam(r, loc); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestTaskRequestValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     taskRequest
		problem string
	}{
		{"one-time", taskRequest{Name: "Dentist", StartDate: "2025-01-08", StartTime: "09:30", EndTime: "10:00"}, ""},
		{"all day ignores times", taskRequest{Name: "Trip", AllDay: true, StartDate: "2025-01-08", StartTime: "bogus"}, ""},
		{"recurring", taskRequest{Name: "Swim", Type: "recurring", RepeatOption: "Weekly", StartDate: "2025-01-01", EndDate: "2025-03-01"}, ""},
		{"missing name", taskRequest{Name: "  ", StartDate: "2025-01-08"}, "name is required"},
		{"bad clock", taskRequest{Name: "Dentist", StartDate: "2025-01-08", StartTime: "9:30"}, "times must be HH:MM"},
		{"end before start time", taskRequest{Name: "Dentist", StartDate: "2025-01-08", StartTime: "10:00", EndTime: "09:00"}, "end time precedes start time"},
		{"bad start date", taskRequest{Name: "Dentist", StartDate: "08/01/2025"}, "start_date must be YYYY-MM-DD"},
		{"one-time with end date", taskRequest{Name: "Dentist", StartDate: "2025-01-08", EndDate: "2025-01-09"}, "one-time tasks cannot have an end date"},
		{"recurring without repeat", taskRequest{Name: "Swim", Type: "recurring", StartDate: "2025-01-01"}, "recurring tasks need a repeat option"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, problem := tt.req.toTask()
			if problem != tt.problem {
				t.Errorf("problem = %q, want %q", problem, tt.problem)
			}
		})
	}
}

func TestTaskRequestDefaults(t *testing.T) {
	task, problem := taskRequest{Name: " Dentist ", StartDate: "2025-01-08"}.toTask()
	if problem != "" {
		t.Fatalf("unexpected problem %q", problem)
	}
	if task.Name != "Dentist" || task.Type != model.TaskOneTime {
		t.Errorf("task = %+v", task)
	}
}

func TestDescribe(t *testing.T) {
	start := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		task model.Task
		want string
	}{
		{model.Task{Type: model.TaskOneTime, StartDate: start}, "Does not repeat"},
		{model.Task{Type: model.TaskRecurring, RepeatOption: "weekly", StartDate: start}, "Repeats weekly on Wed"},
		{model.Task{Type: model.TaskRecurring, RepeatOption: "monthly", StartDate: start}, "Repeats monthly on day 8"},
	}
	for _, tt := range tests {
		if got := describe(tt.task).Recurrence; got != tt.want {
			t.Errorf("describe(%s) = %q, want %q", tt.task.RepeatOption, got, tt.want)
		}
	}
}

func TestChoreRequestValidate(t *testing.T) {
	str := func(s string) *string { return &s }
	num := func(n int) *int { return &n }

	req := choreRequest{
		Name:       str(" Dishes "),
		RewardType: str("money"),
		Days:       &[]string{"Ons", "monday", "Wed"},
	}
	rt, problem := req.validate()
	if problem != "" {
		t.Fatalf("unexpected problem %q", problem)
	}
	if rt != model.RewardCurrency {
		t.Errorf("reward type = %q, want currency", rt)
	}
	if *req.Name != "Dishes" {
		t.Errorf("name = %q", *req.Name)
	}
	if got := *req.Days; len(got) != 2 || got[0] != "Mon" || got[1] != "Wed" {
		t.Errorf("days = %v, want [Mon Wed]", got)
	}

	bad := []choreRequest{
		{Name: str("")},
		{Value: num(-1)},
		{Frequency: num(0)},
		{Days: &[]string{"Someday"}},
		{RewardType: str("stickers")},
	}
	for i, b := range bad {
		if _, problem := b.validate(); problem == "" {
			t.Errorf("case %d: expected a problem", i)
		}
	}
}
