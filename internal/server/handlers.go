package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"

	"github.com/matsen/bjjflow/internal/editor"
	"github.com/matsen/bjjflow/internal/transcript"
)

// maxBodySize limits request bodies, including imported workspaces.
const maxBodySize = 16 << 20

func (s *Server) registerHandlers(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/workspace", s.handleWorkspace)
	mux.HandleFunc("POST /api/workspace", s.handleImport)
	mux.HandleFunc("GET /api/chart", s.handleChart)
	mux.HandleFunc("GET /api/chart/export", s.handleExport)
	mux.HandleFunc("GET /api/chart/path", s.handlePath)
	mux.HandleFunc("POST /api/commands", s.handleCommand)
	mux.HandleFunc("POST /api/layout", s.handleLayout)
	mux.HandleFunc("POST /api/references/{id}/hydrate", s.handleHydrate)
	mux.HandleFunc("POST /api/transcripts/build", s.handleBuildTranscripts)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWorkspace(w http.ResponseWriter, r *http.Request) {
	data, err := s.editor.SerializeWorkspace()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// importResponse reports what kind of document was imported.
type importResponse struct {
	Kind string      `json:"kind"`
	View editor.View `json:"view"`
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}
	kind, err := s.editor.Import(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, importResponse{Kind: kind.String(), View: s.editor.View()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.View())
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.editor.SerializeChart()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+s.editor.ExportFileName()+`"`)
	w.Write(data)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	writeJSON(w, http.StatusOK, map[string][]string{"path": s.editor.RandomPath(rng)})
}

// commandResponse is returned by POST /api/commands and POST /api/layout.
type commandResponse struct {
	Result editor.Result `json:"result"`
	View   editor.View   `json:"view"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading request body")
		return
	}
	cmd, err := editor.DecodeCommand(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.apply(w, cmd)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.apply(w, editor.AutoLayout{})
}

func (s *Server) apply(w http.ResponseWriter, cmd editor.Command) {
	res, err := s.editor.Apply(cmd)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.persist()
	if res.NeedsTitle && s.titles != nil {
		go s.hydrateInBackground(res.ID)
	}
	writeJSON(w, http.StatusOK, commandResponse{Result: res, View: s.editor.View()})
}

func (s *Server) hydrateInBackground(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.hydrateTimeout)
	defer cancel()
	title, err := s.editor.HydrateTitle(ctx, id, s.titles)
	if err != nil {
		s.logger.Warn("title lookup failed", "reference", id, "error", err)
	}
	if title != "" {
		s.persist()
	}
}

// hydrateResponse reports the title applied to a reference. Warning is set
// when the provider lookup failed and a fallback was used.
type hydrateResponse struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Warning string `json:"warning,omitempty"`
}

func (s *Server) handleHydrate(w http.ResponseWriter, r *http.Request) {
	if s.titles == nil {
		writeError(w, http.StatusServiceUnavailable, "title lookup is not configured")
		return
	}
	id := r.PathValue("id")
	title, err := s.editor.HydrateTitle(r.Context(), id, s.titles)
	resp := hydrateResponse{ID: id, Title: title}
	if err != nil {
		if title == "" {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		resp.Warning = err.Error()
	}
	if title != "" {
		s.persist()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBuildTranscripts(w http.ResponseWriter, r *http.Request) {
	if s.transcripts == nil {
		writeError(w, http.StatusServiceUnavailable, "transcript lookup is not configured")
		return
	}
	summary, err := s.editor.BuildFromTranscripts(r.Context(), s.transcripts)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, transcript.ErrNoVideoReferences) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	s.persist()
	writeJSON(w, http.StatusOK, map[string]any{"summary": summary, "view": s.editor.View()})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
