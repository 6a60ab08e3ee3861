package inspect

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vango-dev/fsroutes/internal/errors"
	"github.com/vango-dev/fsroutes/pkg/project"
	"github.com/vango-dev/fsroutes/pkg/router"
)

// PageMatchResponse is the body of a successful page match.
type PageMatchResponse struct {
	Pattern    string        `json:"pattern"`
	SourcePath string        `json:"sourcePath"`
	Chain      []string      `json:"chain"`
	Params     router.Params `json:"params"`
}

// EndpointMatchResponse is the body of a successful endpoint match.
type EndpointMatchResponse struct {
	Pattern    string            `json:"pattern"`
	SourcePath string            `json:"sourcePath"`
	Method     string            `json:"method,omitempty"`
	Kind       string            `json:"kind"`
	Params     map[string]string `json:"params"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.Error) {
	writeJSON(w, status, map[string]any{"error": err})
}

func (s *Server) scanFailed(w http.ResponseWriter, err error) {
	s.logger.Error("route scan failed", "error", err)
	writeError(w, http.StatusInternalServerError, errors.FromError(err, "R110"))
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	pages, err := s.project.Pages(r.Context())
	if err != nil {
		s.scanFailed(w, err)
		return
	}
	if pages == nil {
		pages = []router.Route{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"pages": pages})
}

func (s *Server) handleEndpoints(w http.ResponseWriter, r *http.Request) {
	endpoints, err := s.project.Endpoints(r.Context())
	if err != nil {
		s.scanFailed(w, err)
		return
	}
	if endpoints == nil {
		endpoints = []router.EndpointRoute{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"endpoints": endpoints})
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("R140").WithDetail("The path query parameter is required"))
		return
	}

	m, ok, err := s.project.MatchPage(r.Context(), path)
	if err != nil {
		s.scanFailed(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("R141").WithMessage("No page matches %s", path))
		return
	}

	chain := make([]string, 0, len(m.Chain))
	for _, c := range m.Chain {
		chain = append(chain, c.SourcePath)
	}
	writeJSON(w, http.StatusOK, PageMatchResponse{
		Pattern:    m.Pattern,
		SourcePath: m.Route.SourcePath,
		Chain:      chain,
		Params:     m.Params,
	})
}

func (s *Server) handleEndpoint(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path := q.Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, errors.New("R140").WithDetail("The path query parameter is required"))
		return
	}
	method := q.Get("method")
	if method == "" {
		method = http.MethodGet
	}

	m, ok, err := s.project.MatchEndpoint(r.Context(), path, method)
	if err != nil {
		s.scanFailed(w, err)
		return
	}
	if !ok {
		allowed, err := s.project.AllowedMethods(r.Context(), path)
		if err != nil {
			s.scanFailed(w, err)
			return
		}
		if len(allowed) > 0 {
			w.Header().Set("Allow", strings.Join(allowed, ", "))
			writeError(w, http.StatusMethodNotAllowed,
				errors.New("R142").WithMessage("%s is not served at %s", strings.ToUpper(method), path))
			return
		}
		writeError(w, http.StatusNotFound, errors.New("R141").WithMessage("No endpoint matches %s", path))
		return
	}

	params := m.Params
	if params == nil {
		params = map[string]string{}
	}
	writeJSON(w, http.StatusOK, EndpointMatchResponse{
		Pattern:    m.Route.Pattern,
		SourcePath: m.Route.SourcePath,
		Method:     m.Route.Method,
		Kind:       m.Route.Kind.String(),
		Params:     params,
	})
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	findings, err := s.project.Validate(r.Context())
	if err != nil {
		s.scanFailed(w, err)
		return
	}

	diagnostics := make([]*errors.Error, 0, len(findings))
	for _, f := range findings {
		diagnostics = append(diagnostics, errors.FromValidation(f))
	}
	writeJSON(w, http.StatusOK, map[string]any{"diagnostics": diagnostics})
}

func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var tables []project.Table
	switch t := project.Table(r.URL.Query().Get("table")); t {
	case "":
	case project.TablePages, project.TableEndpoints:
		tables = append(tables, t)
	default:
		writeError(w, http.StatusBadRequest, errors.New("R140").
			WithMessage("Unknown route table %q", t).
			WithSuggestion("Use table=pages or table=endpoints"))
		return
	}
	s.project.Invalidate(tables...)
	w.WriteHeader(http.StatusNoContent)
}
