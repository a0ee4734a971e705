package server

import (
	"embed"
	"encoding/json"
	"mime"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/go-git/go-billy/v5/util"

	toerrors "github.com/conneroisu/codetour/internal/errors"
	"github.com/conneroisu/codetour/internal/logging"
	"github.com/conneroisu/codetour/internal/selection"
	"github.com/conneroisu/codetour/internal/tour"
	"github.com/conneroisu/codetour/internal/validation"
	"github.com/conneroisu/codetour/internal/version"
)

//go:embed assets
var assets embed.FS

const chromaStylesheet = "chroma.css"

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tour.Index(s.registry.All()).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "Failed to render tour index")
	}
}

// handleTour opens a session for the tour and renders its page. The query
// may preselect a tab (?tab=<label or file>) or activate a reference
// (?ref=<id>).
func (s *Server) handleTour(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	slug := r.PathValue("slug")

	t, ok := s.registry.Get(slug)
	if !ok {
		logging.LogTourError(s.logger, ctx, toerrors.ErrTourNotFound(slug))
		http.NotFound(w, r)
		return
	}
	if s.shuttingDown() {
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}

	session := t.Open(ctx, s.loader, s.options)
	s.sessions.add(session)
	session.Load(ctx)
	s.applyQuery(r, session)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := session.Page().Render(ctx, w); err != nil {
		s.logger.Error(ctx, err, "Failed to render tour", "tour", slug, "session", session.ID)
	}
}

func (s *Server) applyQuery(r *http.Request, session *tour.Session) {
	ctx := r.Context()
	query := r.URL.Query()

	if tab := query.Get("tab"); tab != "" {
		if index := session.Tabs().Find(tab); index >= 0 {
			session.SelectTab(ctx, index)
		} else {
			s.logger.Debug(ctx, "Ignoring unknown tab", "tab", logging.SanitizeForLog(tab))
		}
	}

	if raw := query.Get("ref"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err == nil {
			err = session.Activate(ctx, selection.ReferenceID(id))
		}
		if err != nil {
			s.logger.Debug(ctx, "Ignoring invalid reference", "ref", logging.SanitizeForLog(raw), "error", err.Error())
		}
	}
}

// handleFileContent serves a file from the content root as plain text
func (s *Server) handleFileContent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	raw := r.URL.Query().Get("path")
	if raw == "" {
		writeJSONError(w, http.StatusBadRequest, "No file path provided")
		return
	}

	clean, err := validation.ValidateContentPath(raw)
	if err != nil {
		if te, ok := err.(*toerrors.TourError); ok {
			logging.LogTourError(s.logger, ctx, te)
		}
		writeJSONError(w, http.StatusBadRequest, "Invalid file path")
		return
	}

	data, err := util.ReadFile(s.content, clean)
	if err != nil {
		s.logger.Error(ctx, err, "Error reading file", "path", clean)
		writeJSONError(w, http.StatusInternalServerError, "Error reading file")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	session, ok := s.sessions.get(id)
	if !ok {
		logging.LogTourError(s.logger, r.Context(), toerrors.ErrSessionNotFound(id))
		writeJSONError(w, http.StatusNotFound, "Session not found")
		return
	}
	writeJSON(w, http.StatusOK, session.State())
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if _, err := validation.ValidateContentPath(name); err != nil {
		http.NotFound(w, r)
		return
	}

	if name == chromaStylesheet {
		serveBytes(w, name, s.stylesheet)
		return
	}

	if s.static != nil {
		if data, err := util.ReadFile(s.static, name); err == nil {
			serveBytes(w, name, data)
			return
		}
	}

	data, err := assets.ReadFile(path.Join("assets", name))
	if err != nil {
		http.NotFound(w, r)
		return
	}
	serveBytes(w, name, data)
}

// handleHealth returns the server health status for health checks
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	info := version.Get()

	s.serverMutex.RLock()
	watching := s.watcher != nil
	s.serverMutex.RUnlock()

	s.clientsMutex.RLock()
	clients := len(s.clients)
	s.clientsMutex.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if s.shuttingDown() {
		status = "shutting_down"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"version":    info.Short(),
		"build_info": info,
		"checks": map[string]interface{}{
			"tours":     map[string]interface{}{"status": "healthy", "count": s.registry.Count()},
			"sessions":  map[string]interface{}{"status": "healthy", "count": s.sessions.len()},
			"websocket": map[string]interface{}{"status": "healthy", "clients": clients},
			"watcher":   map[string]interface{}{"status": "healthy", "watching": watching},
		},
	})
}

func serveBytes(w http.ResponseWriter, name string, data []byte) {
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
