// Package server exposes the packer over HTTP.
//
//	POST /v1/pack    pack a legend document
//	GET  /v1/comb    enumerate boolean combinations (?n=&k=)
//	GET  /healthz    liveness and build info
//
// Every response carries an X-Request-ID header; pack responses repeat it
// in the body as requestId.
package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/legendpack/pkg/buildinfo"
	"github.com/matzehuels/legendpack/pkg/errors"
	legendio "github.com/matzehuels/legendpack/pkg/io"
	"github.com/matzehuels/legendpack/pkg/legend"
	"github.com/matzehuels/legendpack/pkg/legend/comb"
	"github.com/matzehuels/legendpack/pkg/observability"
	"github.com/matzehuels/legendpack/pkg/pipeline"
)

const (
	// maxBodyBytes bounds a pack request body.
	maxBodyBytes = 4 << 20
	// maxCombListing is the largest count for which /v1/comb lists the
	// sequences themselves.
	maxCombListing = 1000
	// maxCombN bounds n for /v1/comb. C(64, k) still fits in an int, and
	// no legend has that many break candidates worth enumerating.
	maxCombN = 64

	requestIDHeader = "X-Request-ID"
)

// Handler serves the HTTP API.
type Handler struct {
	runner   *pipeline.Runner
	logger   *log.Logger
	defaults pipeline.Options
}

// New creates a handler. defaults supplies packing options that a request
// leaves unset.
func New(runner *pipeline.Runner, logger *log.Logger, defaults pipeline.Options) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{runner: runner, logger: logger, defaults: defaults}
}

// Router returns the chi router with all routes and middleware mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/pack", h.handlePack)
		r.Get("/comb", h.handleComb)
	})
	return r
}

// PackRequest is the body of POST /v1/pack. Zero values fall back to the
// server's defaults.
type PackRequest struct {
	Layers           []*legend.Block `json:"layers"`
	MaxSections      int             `json:"maxSections,omitempty"`
	MaxSectionHeight float64         `json:"maxSectionHeight,omitempty"`
	MinImprovement   *float64        `json:"minImprovement,omitempty"`
	Strategy         string          `json:"strategy,omitempty"`
	Refresh          bool            `json:"refresh,omitempty"`
}

// CombResponse is the body of GET /v1/comb.
type CombResponse struct {
	N         int      `json:"n"`
	K         int      `json:"k"`
	Count     int      `json:"count"`
	Sequences [][]bool `json:"sequences,omitempty"`
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
}

func (h *Handler) handlePack(w http.ResponseWriter, r *http.Request) {
	var req PackRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := legend.Validate(req.Layers); err != nil {
		h.writeError(w, r, err)
		return
	}

	opts := h.defaults
	opts.Formats = nil
	opts.Logger = nil
	if req.MaxSections != 0 {
		opts.MaxSections = req.MaxSections
	}
	if req.MaxSectionHeight != 0 {
		opts.MaxSectionHeight = req.MaxSectionHeight
	}
	if req.MinImprovement != nil {
		opts.MinImprovement = *req.MinImprovement
	}
	if req.Strategy != "" {
		opts.Strategy = req.Strategy
	}
	opts.Refresh = req.Refresh

	res, hit, err := h.runner.PackWithCacheInfo(r.Context(), req.Layers, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out := legendio.FromResult(res)
	out.RequestID = requestIDFrom(r.Context())
	if hit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleComb(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	n, errN := strconv.Atoi(q.Get("n"))
	k, errK := strconv.Atoi(q.Get("k"))
	if errN != nil || errK != nil {
		h.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "n and k must be integers"))
		return
	}
	if n > maxCombN {
		h.writeError(w, r, errors.New(errors.ErrCodeInvalidArgument, "n must be at most %d, got %d", maxCombN, n))
		return
	}

	count := comb.Binomial(n, k)
	resp := CombResponse{N: n, K: k, Count: count}
	if count <= maxCombListing {
		seqs, err := comb.AllComb(n, k)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		resp.Sequences = seqs
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Current()})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Warn("write response", "err", err)
	}
}

// writeError maps err to a status: bad input is a 400, an unsupported
// request a 422, everything else a 500 whose detail is only logged.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	id := requestIDFrom(r.Context())
	status, code, msg := http.StatusInternalServerError, errors.ErrCodeInternal, "internal error"

	var tooBig *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooBig):
		status, code, msg = http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput, "request body too large"
	case errors.IsClientError(err):
		status, code, msg = http.StatusBadRequest, errors.GetCode(err), errors.UserMessage(err)
	case errors.Is(err, errors.ErrCodeUnsupported):
		status, code, msg = http.StatusUnprocessableEntity, errors.ErrCodeUnsupported, errors.UserMessage(err)
	default:
		h.logger.Error("request failed", "request_id", id, "path", r.URL.Path, "err", err)
	}
	h.writeJSON(w, status, errorResponse{Code: code, Message: msg, RequestID: id})
}

// observe reports each request to the HTTP hooks.
func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		hooks := observability.HTTP()

		// The route pattern is only known once chi has routed the request.
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		hooks.OnResponse(r.Context(), r.Method, route, ww.Status(), time.Since(start))
	})
}

type ctxKey int

const requestIDKey ctxKey = 0

// requestID assigns each request a UUID, keeping a well-formed one supplied
// by the client.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
