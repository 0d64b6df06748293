package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/enterprise/ga-view-proxy/internal/analytics"
	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/enterprise/ga-view-proxy/internal/report"
	"github.com/enterprise/ga-view-proxy/internal/secrets"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// RequestIDHeader carries the per-request correlation ID
const RequestIDHeader = "X-Request-ID"

const contentTypeJSON = "application/json; charset=utf-8"

var tracer = otel.Tracer("github.com/enterprise/ga-view-proxy/internal/handler")

// Config is the per-deployment configuration injected at construction
type Config struct {
	Analytics            config.AnalyticsConfig
	ServiceAccountSecret string
	BearerTokenSecret    string
}

// NewConfig picks the handler settings out of the application config
func NewConfig(cfg *config.Config) Config {
	return Config{
		Analytics:            cfg.Analytics,
		ServiceAccountSecret: cfg.Secrets.ServiceAccountName,
		BearerTokenSecret:    cfg.Secrets.BearerTokenName,
	}
}

// Request is the transport-neutral view of an incoming call
type Request struct {
	Method string
	Header http.Header
}

// Response is the transport-neutral result of Handle
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Handler serves one report kind. The ad and origin endpoints are two
// Handlers that differ only in kind.
type Handler struct {
	kind    report.Kind
	config  Config
	secrets secrets.Provider
	reports analytics.Factory
	metrics *Metrics
	logger  logrus.FieldLogger
}

// NewHandler creates a report handler. metrics may be nil.
func NewHandler(kind report.Kind, cfg Config, provider secrets.Provider, reports analytics.Factory, metrics *Metrics, logger logrus.FieldLogger) *Handler {
	return &Handler{
		kind:    kind,
		config:  cfg,
		secrets: provider,
		reports: reports,
		metrics: metrics,
		logger:  logger,
	}
}

// Kind returns the report kind this handler serves
func (h *Handler) Kind() report.Kind {
	return h.kind
}

// Handle runs the report flow: CORS, preflight, authorization, view check,
// upstream query and formatting. It always returns a complete response.
func (h *Handler) Handle(ctx context.Context, req Request) (resp Response) {
	start := time.Now()
	resp = Response{StatusCode: http.StatusOK, Header: http.Header{}}
	if req.Header == nil {
		req.Header = http.Header{}
	}

	SetCORSHeaders(req.Header, resp.Header)

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	resp.Header.Set(RequestIDHeader, requestID)

	log := h.logger.WithFields(logrus.Fields{
		"report":     h.kind,
		"request_id": requestID,
		"method":     req.Method,
	})

	ctx, span := tracer.Start(ctx, "report."+h.kind.String())
	span.SetAttributes(attribute.String("request.id", requestID))

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("Report handler panicked")
			span.SetStatus(codes.Error, "panic")
			h.writeError(&resp, http.StatusInternalServerError, msgInternal)
		}
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
		span.End()
		h.metrics.ObserveRequest(h.kind, resp.StatusCode, time.Since(start))
	}()

	if req.Method == http.MethodOptions {
		return resp
	}

	data, err := h.fetch(ctx, req, log)
	switch {
	case errors.Is(err, ErrUnauthorized):
		log.Warn("Rejected unauthorized report request")
		h.writeError(&resp, http.StatusUnauthorized, msgUnauthorized)
	case errors.Is(err, ErrViewIDNotSet):
		log.Error("Analytics view ID is not configured")
		h.writeError(&resp, http.StatusInternalServerError, msgViewIDNotSet)
	case err != nil:
		entry := log.WithError(err).WithField("upstream", analytics.IsUpstreamError(err))
		var upstreamErr *analytics.UpstreamError
		if errors.As(err, &upstreamErr) && upstreamErr.StatusCode != 0 {
			entry = entry.WithField("upstream_status", upstreamErr.StatusCode)
		}
		entry.Error("Failed to fetch analytics report")
		span.RecordError(err)
		span.SetStatus(codes.Error, "report failed")
		h.writeError(&resp, http.StatusInternalServerError, msgInternal)
	default:
		h.writeJSON(&resp, http.StatusOK, data)
		log.WithField("rows", len(data)).Info("Served analytics report")
	}

	return resp
}

// fetch authorizes the request and runs the upstream query
func (h *Handler) fetch(ctx context.Context, req Request, log logrus.FieldLogger) ([]report.AnalyticsData, error) {
	// A request without credentials is rejected before the secrets store is
	// consulted, so it stays a 401 even when the store is unavailable.
	if req.Header.Get(authorizationHeader) == "" {
		return nil, ErrUnauthorized
	}

	token, err := h.secrets.Get(ctx, h.config.BearerTokenSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve bearer token: %w", err)
	}
	if !Authorized(req.Header, token) {
		return nil, ErrUnauthorized
	}

	if h.config.Analytics.ViewID == "" {
		return nil, ErrViewIDNotSet
	}

	credentials, err := h.secrets.Get(ctx, h.config.ServiceAccountSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve service account: %w", err)
	}

	reporter, err := h.reports(ctx, []byte(credentials))
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics client: %w", err)
	}

	query := analytics.Query{
		ViewID:     h.config.Analytics.ViewID,
		StartDate:  h.config.Analytics.StartDate,
		EndDate:    h.config.Analytics.EndDate,
		Metrics:    report.SessionsMetric,
		Dimensions: h.kind.Dimensions(),
		MaxResults: h.config.Analytics.MaxResults,
	}
	log.WithFields(logrus.Fields{
		"start_date": query.StartDate,
		"end_date":   query.EndDate,
	}).Debug("Querying analytics view")

	upstreamStart := time.Now()
	rows, err := reporter.Report(ctx, query)
	h.metrics.ObserveUpstream(h.kind, err, time.Since(upstreamStart))
	if err != nil {
		return nil, err
	}

	data := report.FormatRows(h.kind, rows)
	h.metrics.ObserveRows(h.kind, len(data))
	return data, nil
}

// Unavailable answers req when no Handler could be built. CORS headers are
// still applied and preflight still succeeds; every other request gets the
// generic 500.
func Unavailable(req Request) Response {
	resp := Response{StatusCode: http.StatusOK, Header: http.Header{}}
	if req.Header != nil {
		SetCORSHeaders(req.Header, resp.Header)
	}
	if req.Method == http.MethodOptions {
		return resp
	}

	body, _ := json.Marshal(ErrorResponse{Error: msgInternal})
	resp.StatusCode = http.StatusInternalServerError
	resp.Header.Set("Content-Type", contentTypeJSON)
	resp.Body = body
	return resp
}

func (h *Handler) writeJSON(resp *Response, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.WithError(err).Error("Failed to encode response")
		status = http.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Error: msgInternal})
	}
	resp.StatusCode = status
	resp.Header.Set("Content-Type", contentTypeJSON)
	resp.Body = body
}

func (h *Handler) writeError(resp *Response, status int, message string) {
	h.writeJSON(resp, status, ErrorResponse{Error: message})
}
