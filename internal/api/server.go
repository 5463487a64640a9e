// Package api exposes the extraction workflow over REST for the serve mode.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/crestline-vc/termsheet-cli/internal/model"
	"github.com/crestline-vc/termsheet-cli/internal/outputs"
	"github.com/crestline-vc/termsheet-cli/internal/render"
	"github.com/crestline-vc/termsheet-cli/internal/review"
	"github.com/crestline-vc/termsheet-cli/internal/session"
)

// Extractor runs the full section-by-section extraction.
type Extractor interface {
	ExtractAll(ctx context.Context, sources map[string]string) (*model.TermSheet, []model.CallRecord, error)
}

// SourceLoader loads source documents from the data directory.
type SourceLoader func(dir string) (map[string]string, error)

// Server wires the workflow components behind the REST surface.
type Server struct {
	store       session.Store
	extractor   Extractor
	loadSources SourceLoader
	dataDir     string
	outDir      string
	llmModel    string
	origins     []string
}

// New builds a Server.
func New(store session.Store, extractor Extractor, loadSources SourceLoader, dataDir, outDir, llmModel string, allowedOrigins []string) *Server {
	return &Server{
		store:       store,
		extractor:   extractor,
		loadSources: loadSources,
		dataDir:     dataDir,
		outDir:      outDir,
		llmModel:    llmModel,
		origins:     allowedOrigins,
	}
}

// Handler builds the chi router with CORS for the browser frontend.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.origins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/api/data-sources", s.handleDataSources)
	r.Post("/api/generate/start", s.handleStart)
	r.Post("/api/generate/run/{id}", s.handleRun)
	r.Get("/api/generate/status/{id}", s.handleStatus)
	r.Post("/api/update-field", s.handleUpdateField)
	r.Post("/api/finalize", s.handleFinalize)
	r.Get("/api/session/{id}", s.handleGetSession)
	r.Delete("/api/session/{id}", s.handleDeleteSession)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// dataSourceInfo describes one file in the data directory.
type dataSourceInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

func (s *Server) handleDataSources(w http.ResponseWriter, _ *http.Request) {
	sources := []dataSourceInfo{}

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		zap.L().Warn("data directory unavailable", zap.String("dir", s.dataDir), zap.Error(err))
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		sources = append(sources, dataSourceInfo{
			Name: entry.Name(),
			Type: sourceType(entry.Name()),
			Size: info.Size(),
			Path: filepath.Join(s.dataDir, entry.Name()),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sources":        sources,
		"document_types": []string{model.DocumentTypeTermSheet},
	})
}

func sourceType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xls":
		return "excel"
	case ".md":
		return "markdown"
	case ".zip":
		return "zip"
	case ".pdf":
		return "pdf"
	case ".doc", ".docx":
		return "docx"
	default:
		return "unknown"
	}
}

func (s *Server) handleStart(w http.ResponseWriter, _ *http.Request) {
	sess := session.New()
	s.store.Put(sess)

	zap.L().Info("session created", zap.String("session_id", sess.ID))
	writeJSON(w, http.StatusOK, map[string]string{
		"session_id": sess.ID,
		"status":     "created",
	})
}

// statusResponse reports generation progress for run and status endpoints.
type statusResponse struct {
	SessionID        string           `json:"session_id"`
	Status           string           `json:"status"`
	Progress         string           `json:"progress"`
	SectionsComplete int              `json:"sections_complete"`
	SectionsTotal    int              `json:"sections_total"`
	TermSheet        *model.TermSheet `json:"term_sheet,omitempty"`
	PreviewMarkdown  string           `json:"preview_markdown,omitempty"`
	Error            string           `json:"error,omitempty"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var beginErr error
	sess.WithLock(func() { beginErr = sess.BeginExtraction() })
	if beginErr != nil {
		writeError(w, http.StatusConflict, "invalid_state", beginErr.Error())
		return
	}

	// Extraction runs without the session lock so status polls stay live.
	// A failing run leaves the session in the extracting state for retry.
	run := func() (statusResponse, bool) {
		srcs, err := s.loadSources(s.dataDir)
		if err != nil {
			return errorStatus(sess.ID, err), false
		}
		ts, calls, err := s.extractor.ExtractAll(r.Context(), srcs)
		if err != nil {
			return errorStatus(sess.ID, err), false
		}
		ts.ExtractedAt = time.Now()

		var installErr error
		sess.WithLock(func() { installErr = sess.CompleteExtraction(ts, calls) })
		if installErr != nil {
			return errorStatus(sess.ID, installErr), false
		}
		return statusResponse{}, true
	}

	if resp, ok := run(); !ok {
		zap.L().Error("generation failed", zap.String("session_id", sess.ID), zap.String("error", resp.Error))
		writeJSON(w, http.StatusOK, resp)
		return
	}

	s.store.Put(sess)
	s.writeOutputsBestEffort(sess)

	writeJSON(w, http.StatusOK, s.reviewStatus(sess, "Extraction complete. Ready for review."))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var resp statusResponse
	sess.WithLock(func() {
		switch sess.State {
		case session.StateInit:
			resp = statusResponse{
				SessionID:     sess.ID,
				Status:        "loading",
				Progress:      "Initializing...",
				SectionsTotal: len(model.SectionNames),
			}
		case session.StateExtracting:
			resp = statusResponse{
				SessionID:     sess.ID,
				Status:        "extracting",
				Progress:      "Extracting data from sources...",
				SectionsTotal: len(model.SectionNames),
			}
		default:
			resp = s.reviewStatusLocked(sess, "Ready for review")
		}
	})

	writeJSON(w, http.StatusOK, resp)
}

type updateFieldRequest struct {
	SessionID string `json:"session_id"`
	Section   string `json:"section"`
	Field     string `json:"field"`
	Value     string `json:"value"`
	Reason    string `json:"reason"`
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	var req updateFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	sess, ok := s.store.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var (
		success bool
		preview string
	)
	sess.WithLock(func() {
		// The state is checked before touching the term sheet so a
		// rejected edit leaves the aggregate untouched, in particular on a
		// completed session.
		if sess.State != session.StateReviewing || sess.TermSheet == nil {
			zap.L().Warn("edit rejected by session state",
				zap.String("session_id", sess.ID), zap.String("state", string(sess.State)))
			return
		}
		decisions, ok := review.UpdateField(sess.TermSheet, sess.Decisions, req.Section, req.Field, req.Value, req.Reason)
		if !ok {
			return
		}
		if err := sess.RecordEdit(decisions); err != nil {
			zap.L().Warn("edit rejected by session state", zap.String("session_id", sess.ID), zap.Error(err))
			return
		}
		success = true
		preview, _ = render.TermSheet(sess.TermSheet)
	})

	if !success {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "Failed to update " + req.Section + "." + req.Field,
		})
		return
	}

	s.store.Put(sess)
	s.writeOutputsBestEffort(sess)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"message":          "Updated " + req.Section + "." + req.Field,
		"term_sheet":       sess.TermSheet,
		"preview_markdown": preview,
	})
}

type finalizeRequest struct {
	SessionID string `json:"session_id"`
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	sess, ok := s.store.Get(req.SessionID)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var (
		blocking    []string
		finalizeErr error
		markdown    string
		paths       map[string]string
		writeErr    error
	)
	sess.WithLock(func() {
		if sess.TermSheet == nil {
			finalizeErr = session.ErrInvalidTransition
			return
		}

		var clean bool
		clean, blocking = review.CanFinalize(sess.TermSheet)
		if !clean {
			return
		}

		if finalizeErr = sess.Finalize(); finalizeErr != nil {
			return
		}
		markdown, _ = render.TermSheet(sess.TermSheet)
		paths, writeErr = outputs.WriteAll(sess, s.llmModel, s.outDir)
	})

	switch {
	case finalizeErr != nil:
		writeError(w, http.StatusConflict, "invalid_state", finalizeErr.Error())
	case len(blocking) > 0:
		writeJSON(w, http.StatusOK, map[string]any{
			"success":         false,
			"message":         "Cannot finalize: fields need review",
			"blocking_fields": blocking,
		})
	case writeErr != nil:
		writeError(w, http.StatusInternalServerError, "output_error", writeErr.Error())
	default:
		s.store.Put(sess)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"message":  "Document finalized successfully",
			"markdown": markdown,
			"outputs":  paths,
		})
	}
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "session not found")
		return
	}

	var resp map[string]any
	sess.WithLock(func() {
		resp = map[string]any{
			"session_id":     sess.ID,
			"state":          sess.State,
			"term_sheet":     sess.TermSheet,
			"conflicts":      []model.ConflictEntry{},
			"user_decisions": sess.Decisions,
		}
		if sess.TermSheet != nil {
			resp["conflicts"] = sess.TermSheet.Conflicts()
			preview, err := render.TermSheet(sess.TermSheet)
			if err == nil {
				resp["preview_markdown"] = preview
			}
		}
	})

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	s.store.Delete(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// reviewStatus locks the session and builds the post-extraction status.
func (s *Server) reviewStatus(sess *session.Session, progress string) statusResponse {
	var resp statusResponse
	sess.WithLock(func() { resp = s.reviewStatusLocked(sess, progress) })
	return resp
}

// reviewStatusLocked assumes the caller holds the session lock.
func (s *Server) reviewStatusLocked(sess *session.Session, progress string) statusResponse {
	resp := statusResponse{
		SessionID:        sess.ID,
		Status:           "complete",
		Progress:         progress,
		SectionsComplete: len(model.SectionNames),
		SectionsTotal:    len(model.SectionNames),
		TermSheet:        sess.TermSheet,
	}
	if sess.TermSheet != nil {
		if preview, err := render.TermSheet(sess.TermSheet); err == nil {
			resp.PreviewMarkdown = preview
		}
	}
	return resp
}

// writeOutputsBestEffort refreshes the flat-file outputs; failures only warn
// because the session state is already committed.
func (s *Server) writeOutputsBestEffort(sess *session.Session) {
	sess.WithLock(func() {
		if sess.TermSheet == nil {
			return
		}
		if _, err := outputs.WriteExtractedData(sess.TermSheet, s.outDir); err != nil {
			zap.L().Warn("failed to write extracted data", zap.Error(err))
			return
		}
		if _, err := outputs.WriteConflicts(sess.TermSheet, s.outDir); err != nil {
			zap.L().Warn("failed to write conflicts", zap.Error(err))
		}
		if _, err := outputs.WriteTermSheet(sess.TermSheet, s.outDir); err != nil {
			zap.L().Warn("failed to write term sheet", zap.Error(err))
		}
	})
}

func errorStatus(sessionID string, err error) statusResponse {
	return statusResponse{
		SessionID:     sessionID,
		Status:        "error",
		Progress:      "Generation failed",
		SectionsTotal: len(model.SectionNames),
		Error:         err.Error(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": message})
}
