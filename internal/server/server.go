// Package server exposes an engine over HTTP.
//
// Every response is JSON except the topology diagram. Failures carry the
// error code of pkg/errors:
//
//	{"error": {"code": "UNKNOWN_NODE", "message": "no node named \"Nope\""}}
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/lightlayer/pkg/buildinfo"
	"github.com/matzehuels/lightlayer/pkg/core/node"
	"github.com/matzehuels/lightlayer/pkg/engine"
	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
	"github.com/matzehuels/lightlayer/pkg/observability"
	"github.com/matzehuels/lightlayer/pkg/render/topology"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// ShutdownTimeout bounds the graceful shutdown in ListenAndServe.
const ShutdownTimeout = 5 * time.Second

// Server serves the control API of one engine.
type Server struct {
	eng    *engine.Engine
	log    *log.Logger
	router chi.Router
}

// New builds the router for eng.
func New(eng *engine.Engine, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{eng: eng, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Route("/api", func(r chi.Router) {
		r.Get("/version", s.handleVersion)
		r.Get("/info", s.handleInfo)
		r.Get("/pins", s.handlePins)
		r.Get("/positions", s.handlePositions)
		r.Get("/nodes", s.handleNodes)
		r.Get("/catalog", s.handleCatalog)
		r.Get("/topology.dot", s.handleTopologyDOT)
		r.Get("/topology.svg", s.handleTopologySVG)
		r.Post("/layout", s.handleLayout)

		r.Route("/layers/{layer}/nodes/{index}", func(r chi.Router) {
			r.Put("/", s.handlePutNode)
			r.Delete("/", s.handleDeleteNode)
		})

		r.Route("/presets/{name}", func(r chi.Router) {
			r.Get("/", s.handleGetPreset)
			r.Put("/", s.handleSavePreset)
			r.Delete("/", s.handleDeletePreset)
			r.Post("/load", s.handleLoadPreset)
		})
	})
	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("http server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("http server stopped")
	return nil
}

// observe reports every request to the HTTP hooks and the debug log.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, d)
		s.log.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", status,
			"duration", d, "request_id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Diagnostics
// =============================================================================

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.eng.Report())
}

func (s *Server) handlePins(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.eng.Pins())
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.eng.Positions())
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	nodes := s.eng.Nodes()
	if nodes == nil {
		nodes = []engine.NodeInfo{}
	}
	s.writeJSON(w, http.StatusOK, nodes)
}

type catalogEntry struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	entries := s.eng.Catalog()
	out := make([]catalogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, catalogEntry{Name: e.Name, Category: e.Category.String()})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) topologyDOT(r *http.Request) string {
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	return topology.ToDOT(s.eng.Snapshot(), topology.Options{Detailed: detailed})
}

func (s *Server) handleTopologyDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(s.topologyDOT(r)))
}

func (s *Server) handleTopologySVG(w http.ResponseWriter, r *http.Request) {
	svg, err := topology.RenderSVG(r.Context(), s.topologyDOT(r))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.MapLayout(r.Context()); err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.eng.Report())
}

// =============================================================================
// Nodes
// =============================================================================

type nodeRequest struct {
	Name     string        `json:"name"`
	Controls node.Controls `json:"controls,omitempty"`
}

// slotParams parses the layer and slot index of a node route. Only the
// default layer accepts nodes.
func slotParams(r *http.Request) (int, error) {
	if chi.URLParam(r, "layer") != "0" {
		return 0, lerrors.New(lerrors.ErrCodeNotFound, "no layer %q", chi.URLParam(r, "layer"))
	}
	raw := chi.URLParam(r, "index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, lerrors.Wrap(lerrors.ErrCodeInvalidSlot, err, "slot index %q", raw)
	}
	return index, lerrors.ValidateSlot(index, 0)
}

func (s *Server) handlePutNode(w http.ResponseWriter, r *http.Request) {
	index, err := slotParams(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	var req nodeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if err := lerrors.ValidateNodeName(req.Name); err != nil {
		s.writeErr(w, err)
		return
	}
	info, err := s.eng.AddNode(r.Context(), index, req.Name, req.Controls)
	if err != nil && info.Name == "" {
		s.writeErr(w, err)
		return
	}
	if err != nil {
		// The node is in place; only the remap failed.
		s.log.Warn("layout after node change failed", "slot", info.Index, "err", err)
	}
	s.writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	index, err := slotParams(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if err := s.eng.RemoveNode(r.Context(), index); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Presets
// =============================================================================

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.Preset(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.SavePreset(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleLoadPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.eng.LoadPreset(r.Context(), chi.URLParam(r, "name"))
	if err != nil && p == nil {
		s.writeErr(w, err)
		return
	}
	if err != nil {
		s.log.Warn("preset applied with errors", "name", p.Name, "err", err)
	}
	s.writeJSON(w, http.StatusOK, s.eng.Nodes())
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.eng.DeletePreset(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Encoding
// =============================================================================

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeInvalidInput, err, "decode request body")
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", "err", err)
	}
}

type errorBody struct {
	Error struct {
		Code    lerrors.Code `json:"code"`
		Message string       `json:"message"`
	} `json:"error"`
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	code := lerrors.GetCode(err)
	if code == "" {
		code = lerrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	}
	var body errorBody
	body.Error.Code = code
	body.Error.Message = lerrors.UserMessage(err)
	s.writeJSON(w, status, body)
}

func statusFor(code lerrors.Code) int {
	switch code {
	case lerrors.ErrCodeInvalidInput, lerrors.ErrCodeInvalidSlot,
		lerrors.ErrCodeInvalidConfig, lerrors.ErrCodeUnknownNode:
		return http.StatusBadRequest
	case lerrors.ErrCodeNotFound:
		return http.StatusNotFound
	case lerrors.ErrCodeInvalidState:
		return http.StatusConflict
	case lerrors.ErrCodeScript:
		return http.StatusUnprocessableEntity
	case lerrors.ErrCodeStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
