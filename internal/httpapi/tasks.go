package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akozyrev/deskmate/internal/taskruntime"
	"github.com/akozyrev/deskmate/internal/tasks"
)

type submitCommandRequest struct {
	Text string `json:"text"`
}

type submitCommandResponse struct {
	TaskID string `json:"task_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type cancelTaskRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleSubmitCommand(w http.ResponseWriter, r *http.Request) {
	var req submitCommandRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "text is required")
		return
	}

	rec, err := s.service.SubmitCommand(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, taskruntime.ErrThrottled) {
			respondError(w, http.StatusTooManyRequests, "throttled", err.Error())
			return
		}
		if errors.Is(err, tasks.ErrQueueFull) {
			respondError(w, http.StatusServiceUnavailable, "queue_full", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "command_failed", err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, submitCommandResponse{
		TaskID: rec.ID,
		Name:   rec.Name,
		Status: string(rec.Status),
	})
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimSpace(chi.URLParam(r, "id"))
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "invalid_task_id", "missing task id")
		return
	}

	rec, err := s.service.GetTask(taskID)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task_not_found", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "task_get_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListTasks(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"tasks": s.service.ListTasks(),
	})
}

func (s *Server) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimSpace(chi.URLParam(r, "id"))
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "invalid_task_id", "missing task id")
		return
	}

	reason := "cancelled by API"
	var req cancelTaskRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if strings.TrimSpace(req.Reason) != "" {
		reason = strings.TrimSpace(req.Reason)
	}

	rec, err := s.service.CancelTask(taskID, reason)
	if err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task_not_found", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "task_cancel_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleStopTask(w http.ResponseWriter, r *http.Request) {
	taskID := strings.TrimSpace(chi.URLParam(r, "id"))
	if taskID == "" {
		respondError(w, http.StatusBadRequest, "invalid_task_id", "missing task id")
		return
	}

	if err := s.service.StopTask(taskID); err != nil {
		if errors.Is(err, tasks.ErrTaskNotFound) {
			respondError(w, http.StatusNotFound, "task_not_found", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "task_stop_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"task_id": taskID,
		"stopped": true,
	})
}
