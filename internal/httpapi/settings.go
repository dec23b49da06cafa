package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/akozyrev/deskmate/internal/config"
)

type updateSettingRequest struct {
	Value string `json:"value"`
}

func (s *Server) handleListSettings(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.service.Settings())
}

func (s *Server) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "invalid_setting", "missing setting name")
		return
	}

	value, err := s.service.Setting(name)
	if err != nil {
		if errors.Is(err, config.ErrSettingNotFound) {
			respondError(w, http.StatusNotFound, "setting_not_found", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "setting_get_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{
		"name":  name,
		"value": value,
	})
}

func (s *Server) handleUpdateSetting(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(chi.URLParam(r, "name"))
	if name == "" {
		respondError(w, http.StatusBadRequest, "invalid_setting", "missing setting name")
		return
	}

	var req updateSettingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	if err := s.service.UpdateSetting(name, req.Value); err != nil {
		if errors.Is(err, config.ErrSettingNotFound) {
			respondError(w, http.StatusNotFound, "setting_not_found", err.Error())
			return
		}
		respondError(w, http.StatusBadRequest, "setting_update_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, s.service.Settings())
}

func (s *Server) handleReloadConfig(w http.ResponseWriter, _ *http.Request) {
	if err := s.service.ReloadConfig(); err != nil {
		respondError(w, http.StatusBadRequest, "config_reload_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"reloaded": true,
		"settings": s.service.Settings(),
	})
}
