package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/openlearnhub/hub-edge/internal/curriculum"
	"github.com/openlearnhub/hub-edge/internal/notify"
	"github.com/openlearnhub/hub-edge/internal/report"
	"github.com/openlearnhub/hub-edge/internal/resolver"
)

type server struct {
	client   *curriculum.Client
	resolver *resolver.Resolver
	hub      *notify.Hub

	// reloadCatalog re-reads the YAML catalog. Nil when the catalog is
	// database-backed; the reload endpoint then answers 409.
	reloadCatalog func() error

	// adminTokenHash is the bcrypt hash guarding admin endpoints. Empty
	// disables them.
	adminTokenHash string

	ready []func(r *http.Request) error
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/curriculum/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/curriculum/user/{userId}", s.handleList)
	mux.HandleFunc("GET /api/curriculum/{id}", s.handleGet)
	mux.HandleFunc("GET /api/curriculum/{id}/view", s.handleView)
	mux.HandleFunc("GET /api/curriculum/{id}/report.xlsx", s.handleReport)
	mux.HandleFunc("DELETE /api/curriculum/{id}", s.handleDelete)
	mux.HandleFunc("PATCH /api/curriculum/{id}/progress", s.handleProgress)

	mux.HandleFunc("POST /api/admin/catalog/reload", s.handleCatalogReload)

	if s.hub != nil {
		mux.Handle("GET /ws/events", s.hub)
	}

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}

func (s *server) publish(event notify.Event) {
	if s.hub != nil {
		s.hub.Publish(event)
	}
}

type generatePayload struct {
	UserID string `json:"userId"`
	curriculum.FormData
}

func (s *server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	result := s.client.Generate(r.Context(), payload.UserID, payload.FormData)

	status := http.StatusOK
	switch {
	case result.Success:
		id := ""
		if result.Curriculum != nil {
			id = result.Curriculum.ID
		}
		s.publish(notify.Event{Type: notify.EventGenerated, UserID: payload.UserID, CurriculumID: id})
	case result.Error == curriculum.NetworkError:
		status = http.StatusBadGateway
	default:
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

func (s *server) handleGet(w http.ResponseWriter, r *http.Request) {
	saved := s.client.GetByID(r.Context(), r.PathValue("id"))
	if saved == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "curriculum not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"curriculum": saved})
}

// tierView pairs a tier with the per-course resource resolutions, in
// course order.
type tierView struct {
	Name        string                  `json:"name"`
	Tier        curriculum.LearningTier `json:"tier"`
	Resolutions []resolver.Resolution   `json:"resolutions"`
}

type viewResponse struct {
	ID        string              `json:"id"`
	UserID    string              `json:"userId"`
	FormData  curriculum.FormData `json:"formData"`
	View      *curriculum.View    `json:"view"`
	TierViews []tierView          `json:"tierViews"`
	Progress  map[string]any      `json:"progress,omitempty"`
}

func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	saved := s.client.GetByID(r.Context(), r.PathValue("id"))
	if saved == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "curriculum not found"})
		return
	}

	view, err := s.renderView(r, saved)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity,
			map[string]string{"error": "curriculum data seems corrupted"})
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// renderView validates, normalizes, and resolves a saved curriculum into
// its render-ready form. A corrupted payload surfaces as ErrCorrupted.
func (s *server) renderView(r *http.Request, saved *curriculum.Saved) (*viewResponse, error) {
	if err := saved.Validate(); err != nil {
		slog.Warn("rejecting corrupted curriculum", "curriculum_id", saved.ID, "error", err)
		return nil, err
	}
	view, err := curriculum.Normalize(saved.Curriculum)
	if err != nil {
		return nil, err
	}

	resp := &viewResponse{
		ID:       saved.ID,
		UserID:   saved.UserID,
		FormData: saved.FormData,
		View:     view,
		Progress: saved.Progress,
	}
	for _, name := range curriculum.TierOrder {
		tier, ok := view.Tier(name)
		if !ok {
			continue
		}
		tv := tierView{Name: name, Tier: tier, Resolutions: make([]resolver.Resolution, len(tier.Courses))}
		for i, course := range tier.Courses {
			tv.Resolutions[i] = s.resolver.Resolve(r.Context(), course, name)
		}
		resp.TierViews = append(resp.TierViews, tv)
	}
	return resp, nil
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	curricula := s.client.GetUserCurricula(r.Context(), r.PathValue("userId"))
	writeJSON(w, http.StatusOK, map[string]any{"curricula": curricula})
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id := r.PathValue("id")
	if !s.client.Delete(r.Context(), id, payload.UserID) {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "delete failed"})
		return
	}
	s.publish(notify.Event{Type: notify.EventDeleted, UserID: payload.UserID, CurriculumID: id})
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleProgress(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Progress map[string]any `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	id := r.PathValue("id")
	saved := s.client.UpdateProgress(r.Context(), id, payload.Progress)
	if saved == nil {
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "progress update failed"})
		return
	}
	s.publish(notify.Event{Type: notify.EventProgressUpdated, UserID: saved.UserID, CurriculumID: id})
	writeJSON(w, http.StatusOK, map[string]any{"curriculum": saved})
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	saved := s.client.GetByID(r.Context(), r.PathValue("id"))
	if saved == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "curriculum not found"})
		return
	}
	if err := saved.Validate(); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity,
			map[string]string{"error": "curriculum data seems corrupted"})
		return
	}
	view, err := curriculum.Normalize(saved.Curriculum)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity,
			map[string]string{"error": "curriculum data seems corrupted"})
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="curriculum-`+saved.ID+`.xlsx"`)
	if err := report.WriteProgress(w, saved, view); err != nil {
		slog.Error("writing progress report", "curriculum_id", saved.ID, "error", err)
	}
}

func (s *server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	if s.adminTokenHash == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok || bcrypt.CompareHashAndPassword([]byte(s.adminTokenHash), []byte(token)) != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	if s.reloadCatalog == nil {
		writeJSON(w, http.StatusConflict,
			map[string]string{"error": "catalog is database-backed; reload does not apply"})
		return
	}
	if err := s.reloadCatalog(); err != nil {
		slog.Error("catalog reload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reload failed"})
		return
	}
	s.publish(notify.Event{Type: notify.EventCatalogReloaded})
	writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (s *server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	for _, check := range s.ready {
		if err := check(r); err != nil {
			slog.Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
