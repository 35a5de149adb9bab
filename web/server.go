// Package web exposes the research agent over HTTP.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/smhanov/wikifacts"
)

// Pinger reports whether the backing LLM is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Info describes the running configuration, returned by /api/config.
type Info struct {
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	Language     string `json:"language"`
	MaxArticles  int    `json:"max_articles"`
	OutputFormat string `json:"output_format"`
}

// Server serves the wikifacts HTTP API.
type Server struct {
	agent  *wikifacts.Agent
	pinger Pinger
	info   Info
	log    *zap.Logger
	mux    *http.ServeMux
}

// NewServer builds a Server around an agent. pinger may be nil, in
// which case /health only reports that the process is up.
func NewServer(agent *wikifacts.Agent, pinger Pinger, info Info, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{agent: agent, pinger: pinger, info: info, log: log, mux: http.NewServeMux()}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/config", s.handleConfig)
	s.mux.HandleFunc("POST /api/query", s.handleQuery)
	s.mux.HandleFunc("POST /api/query/stream", s.handleQueryStream)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	reqID := uuid.NewString()
	w.Header().Set("X-Request-ID", reqID)
	s.mux.ServeHTTP(w, r)
	s.log.Info("request",
		zap.String("id", reqID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Duration("elapsed", time.Since(start)))
}

type healthResponse struct {
	Status string `json:"status"`
	LLM    string `json:"llm"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", LLM: "unknown"}
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			resp.LLM = "unreachable"
			s.log.Warn("llm ping failed", zap.Error(err))
		} else {
			resp.LLM = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

type queryRequest struct {
	Query  string `json:"query"`
	Format string `json:"format,omitempty"`
}

type queryResponse struct {
	Format   string                        `json:"format"`
	Answer   string                        `json:"answer,omitempty"`
	Document *wikifacts.StructuredDocument `json:"document,omitempty"`
	Sources  []wikifacts.Source            `json:"sources,omitempty"`
}

func (s *Server) parseQuery(r *http.Request) (queryRequest, error) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("invalid request body: %w", err)
	}
	if req.Query == "" {
		return req, fmt.Errorf("query is required")
	}
	return req, nil
}

func queryOptions(req queryRequest) []wikifacts.QueryOption {
	var opts []wikifacts.QueryOption
	if req.Format != "" {
		opts = append(opts, wikifacts.WithFormat(wikifacts.OutputFormat(req.Format)))
	}
	return opts
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	result, err := s.agent.Query(r.Context(), req.Query, queryOptions(req)...)
	if err != nil {
		s.log.Error("query failed", zap.String("query", req.Query), zap.Error(err))
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, queryResponse{
		Format:   string(result.Format),
		Answer:   result.Text,
		Document: result.Document,
		Sources:  result.Sources,
	})
}

// handleQueryStream answers a query over Server-Sent Events. Status
// updates arrive as "status" events, answer text as "chunk" events, and
// the final result as a "result" event.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	emit := func(event string, payload any) {
		data, err := json.Marshal(payload)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
		flusher.Flush()
	}

	opts := append(queryOptions(req),
		wikifacts.WithStatusFunc(func(msg string) {
			emit("status", map[string]string{"message": msg})
		}))

	result, err := s.agent.QueryStream(r.Context(), req.Query, func(chunk string) {
		emit("chunk", map[string]string{"text": chunk})
	}, opts...)
	if err != nil {
		s.log.Error("query failed", zap.String("query", req.Query), zap.Error(err))
		emit("error", map[string]string{"message": err.Error()})
		return
	}
	emit("result", queryResponse{
		Format:   string(result.Format),
		Answer:   result.Text,
		Document: result.Document,
		Sources:  result.Sources,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
