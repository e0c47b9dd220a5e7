package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-pkgz/rest"

	"github.com/amishk599/jobboard/internal/ai"
	"github.com/amishk599/jobboard/internal/board"
	"github.com/amishk599/jobboard/internal/filter"
	"github.com/amishk599/jobboard/internal/model"
)

type identityRequest struct {
	Name   string `json:"name"`
	Handle string `json:"handle"`
}

type jobResponse struct {
	Job       model.Job `json:"job"`
	ShareText string    `json:"shareText"`
}

type applyResponse struct {
	Application model.Application `json:"application"`
	Notified    bool              `json:"notified"`
}

type studioRequest struct {
	Image       string `json:"image"`
	Instruction string `json:"instruction"`
	Aspect      string `json:"aspect,omitempty"`
}

// studioResponse carries the result as a data URI; Generated is false when
// the model produced nothing.
type studioResponse struct {
	Generated bool   `json:"generated"`
	DataURI   string `json:"dataUri,omitempty"`
}

// POST /api/login
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.board.Register(req.Name, req.Handle)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, user)
}

// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.board.Stats()
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, stats)
}

// GET /api/jobs?q=&category=
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	category := model.Category(r.URL.Query().Get("category"))
	if category != "" && !category.Valid() {
		s.writeJSONError(w, http.StatusBadRequest, "unknown category")
		return
	}
	jobs, err := s.board.Jobs(filter.NewSearchFilter(r.URL.Query().Get("q"), category))
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, jobs)
}

// GET /api/jobs/{id}
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.board.Job(r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, jobResponse{Job: job, ShareText: s.board.ShareText(job)})
}

// POST /api/jobs
func (s *Server) handlePostJob(w http.ResponseWriter, r *http.Request) {
	var draft board.JobDraft
	if !s.decode(w, r, &draft) {
		return
	}
	job, err := s.board.PostJob(r.Context(), draft, r.Header.Get(UserHeader))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, job)
}

// DELETE /api/jobs/{id}
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.board.Job(id); err != nil {
		s.writeError(w, err)
		return
	}
	ok, err := s.board.DeleteJob(id, r.Header.Get(UserHeader))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeJSONError(w, http.StatusForbidden, "only the owner or the administrator may delete this job")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/jobs/{id}/apply
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if !s.decode(w, r, &req) {
		return
	}

	var applicant *model.User
	if id := r.Header.Get(UserHeader); id != "" {
		applicant = &model.User{ID: id}
	}
	app, notified, err := s.board.Apply(r.Context(), r.PathValue("id"), applicant, req.Name, req.Handle)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, applyResponse{Application: app, Notified: notified})
}

// GET /api/admin/applications
func (s *Server) handleListApplications(w http.ResponseWriter, _ *http.Request) {
	apps, err := s.board.Applications()
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, apps)
}

// DELETE /api/admin/applications/{id}
func (s *Server) handleDeleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := s.board.DeleteApplication(r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// POST /api/studio/edit
func (s *Server) handleStudioEdit(w http.ResponseWriter, r *http.Request) {
	if s.studio == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "studio is not configured")
		return
	}
	var req studioRequest
	if !s.decode(w, r, &req) {
		return
	}
	media, err := s.studio.EditImage(r.Context(), req.Image, req.Instruction)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, toStudioResponse(media))
}

// POST /api/studio/animate
func (s *Server) handleStudioAnimate(w http.ResponseWriter, r *http.Request) {
	if s.studio == nil {
		s.writeJSONError(w, http.StatusServiceUnavailable, "studio is not configured")
		return
	}
	var req studioRequest
	if !s.decode(w, r, &req) {
		return
	}
	media, err := s.studio.AnimateImage(r.Context(), req.Image, req.Instruction, req.Aspect)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rest.RenderJSON(w, toStudioResponse(media))
}

func toStudioResponse(m *ai.Media) studioResponse {
	if m == nil {
		return studioResponse{}
	}
	return studioResponse{Generated: true, DataURI: m.DataURI()}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeError maps domain errors to status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, model.ErrNotFound):
		s.writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, model.ErrForbidden):
		s.writeJSONError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, model.ErrCredentialRequired):
		s.writeJSON(w, http.StatusPreconditionRequired, map[string]string{
			"error": "an API key for the generation service is required",
			"code":  "credential_required",
		})
	case errors.Is(err, model.ErrGenerationTimeout):
		s.writeJSON(w, http.StatusGatewayTimeout, map[string]string{
			"error": "generation took too long, try again",
			"code":  "generation_timeout",
		})
	default:
		s.logger.Error("request failed", "error", err)
		s.writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode JSON response", "error", err)
	}
}
