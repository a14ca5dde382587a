// Package server exposes schema-file types over HTTP.
package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	gojson "github.com/goccy/go-json"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/reoring/jsoning"
	"github.com/reoring/jsoning/internal/schemafile"
)

// maxBody bounds request bodies.
const maxBody = 4 << 20

// Source yields the active schema. *schemafile.Holder implements it.
type Source interface {
	Get() *schemafile.Schema
}

// Static is a Source that never changes.
type Static struct{ Schema *schemafile.Schema }

func (s Static) Get() *schemafile.Schema { return s.Schema }

// Config wires a server.
type Config struct {
	Source  Source
	Logger  zerolog.Logger
	Metrics *Metrics // nil disables /metrics and request metrics
	Timeout time.Duration
}

type handler struct {
	src     Source
	log     zerolog.Logger
	metrics *Metrics
}

// NewRouter builds the HTTP routes:
//
//	GET  /healthz
//	GET  /types
//	POST /types/{type}/generate?version=&pretty=&format=text|hash
//	POST /types/{type}/reconstruct?version=
//	GET  /metrics
func NewRouter(cfg Config) chi.Router {
	h := &handler{src: cfg.Source, log: cfg.Logger, metrics: cfg.Metrics}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	if cfg.Metrics != nil {
		r.Use(NewMetricsMiddleware(cfg.Metrics))
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Get("/healthz", h.health)
	r.Route("/types", func(r chi.Router) {
		r.Get("/", h.listTypes)
		r.Post("/{type}/generate", h.generate)
		r.Post("/{type}/reconstruct", h.reconstruct)
	})
	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "types": len(h.src.Get().Types())})
}

type typeInfo struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
}

func (h *handler) listTypes(w http.ResponseWriter, r *http.Request) {
	s := h.src.Get()
	out := make([]typeInfo, 0, len(s.Types()))
	for _, name := range s.Types() {
		vs, err := s.Versions(name)
		if err != nil {
			h.fail(w, err)
			return
		}
		out = append(out, typeInfo{Name: name, Versions: vs})
	}
	writeJSON(w, http.StatusOK, map[string]any{"types": out})
}

func (h *handler) generate(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	q := r.URL.Query()
	opt := jsoning.GenerateOpt{Version: q.Get("version")}
	if p := q.Get("pretty"); p != "" {
		b, err := strconv.ParseBool(p)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "pretty must be a boolean", "")
			return
		}
		opt.Pretty = b
	}
	format := q.Get("format")
	switch format {
	case "", "text":
	case "hash":
		opt.Hash = true
	default:
		writeError(w, http.StatusBadRequest, "bad_request", "format must be text or hash", "")
		return
	}

	fields, ok := h.readObject(w, r)
	if !ok {
		return
	}
	s := h.src.Get()
	if opt.Hash {
		doc, err := s.GenerateDocument(typ, fields, opt)
		h.count("generate", typ, err)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, doc)
		return
	}
	text, err := s.Generate(typ, fields, opt)
	h.count("generate", typ, err)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType(s))
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, text)
}

func (h *handler) reconstruct(w http.ResponseWriter, r *http.Request) {
	typ := chi.URLParam(r, "type")
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "bad_request", err.Error(), "")
		return
	}
	doc, err := h.src.Get().Parse(typ, body, r.URL.Query().Get("version"))
	h.count("reconstruct", typ, err)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// readObject decodes a JSON object body with the engine's number rules.
func (h *handler) readObject(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBody))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "bad_request", err.Error(), "")
		return nil, false
	}
	v, err := jsoning.JSONDriver().Decode(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body: "+err.Error(), "")
		return nil, false
	}
	m, ok := v.(map[string]any)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "body must be a JSON object", "")
		return nil, false
	}
	return m, true
}

func (h *handler) count(op, typ string, err error) {
	if h.metrics == nil {
		return
	}
	outcome := "ok"
	if e, ok := jsoning.AsError(err); ok {
		outcome = e.Code
	} else if err != nil {
		outcome = "error"
	}
	h.metrics.Operations.WithLabelValues(op, typ, outcome).Inc()
}

// fail maps engine errors onto HTTP statuses.
func (h *handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	code := "error"
	field := ""
	if e, ok := jsoning.AsError(err); ok {
		code, field = e.Code, e.Field
		switch {
		case errors.Is(err, jsoning.ErrProtocolNotFound), errors.Is(err, jsoning.ErrVersionNotFound):
			status = http.StatusNotFound
		case errors.Is(err, jsoning.ErrValidation):
			status = http.StatusUnprocessableEntity
		case errors.Is(err, jsoning.ErrConfiguration):
			status = http.StatusInternalServerError
		}
	}
	h.log.Debug().Err(err).Int("status", status).Msg("request failed")
	writeError(w, status, code, err.Error(), field)
}

func contentType(s *schemafile.Schema) string {
	if s.File().Options.Driver == "yaml" {
		return "application/yaml"
	}
	return "application/json"
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg, field string) {
	writeJSON(w, status, map[string]any{"error": errorBody{Code: code, Message: msg, Field: field}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := gojson.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
