package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/enterprise/ga-view-proxy/internal/report"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/oauth2/google"
	ga "google.golang.org/api/analytics/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const viewIDPrefix = "ga:"

var tracer = otel.Tracer("github.com/enterprise/ga-view-proxy/internal/analytics")

// Query is a single Core Reporting request
type Query struct {
	ViewID     string
	StartDate  string
	EndDate    string
	Metrics    string
	Dimensions string
	MaxResults int64
}

// Reporter runs a query and returns the raw dimension rows
type Reporter interface {
	Report(ctx context.Context, q Query) ([]report.Row, error)
}

// Factory builds a Reporter from a service account credential JSON blob
type Factory func(ctx context.Context, credentialsJSON []byte) (Reporter, error)

// GAClient queries the Core Reporting API (v3) with read-only scope
type GAClient struct {
	service *ga.Service
	timeout time.Duration
}

// NewGAClient parses credentialsJSON and creates the reporting service.
// opts are appended after the credentials, so tests can point the client at
// a local endpoint.
func NewGAClient(ctx context.Context, credentialsJSON []byte, opts ...option.ClientOption) (*GAClient, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, ga.AnalyticsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	clientOpts := append([]option.ClientOption{option.WithCredentials(creds)}, opts...)
	service, err := ga.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create analytics service: %w", err)
	}

	return &GAClient{service: service}, nil
}

// NewGAClientFactory returns a Factory that creates a GAClient per call with
// the given request timeout (zero disables it)
func NewGAClientFactory(timeout time.Duration, opts ...option.ClientOption) Factory {
	return func(ctx context.Context, credentialsJSON []byte) (Reporter, error) {
		client, err := NewGAClient(ctx, credentialsJSON, opts...)
		if err != nil {
			return nil, err
		}
		client.timeout = timeout
		return client, nil
	}
}

// Report issues exactly one data.ga.get call
func (c *GAClient) Report(ctx context.Context, q Query) ([]report.Row, error) {
	ctx, span := tracer.Start(ctx, "analytics.Report")
	defer span.End()

	ids := NormalizeViewID(q.ViewID)
	span.SetAttributes(
		attribute.String("ga.view_id", ids),
		attribute.String("ga.dimensions", q.Dimensions),
		attribute.String("ga.start_date", q.StartDate),
		attribute.String("ga.end_date", q.EndDate),
	)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	call := c.service.Data.Ga.Get(ids, q.StartDate, q.EndDate, q.Metrics).Context(ctx)
	if q.Dimensions != "" {
		call = call.Dimensions(q.Dimensions)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}

	data, err := call.Do()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, newUpstreamError(err)
	}

	rows := make([]report.Row, 0, len(data.Rows))
	for _, row := range data.Rows {
		rows = append(rows, report.Row(row))
	}
	span.SetAttributes(attribute.Int("ga.rows", len(rows)))

	return rows, nil
}

// NormalizeViewID adds the "ga:" prefix the API expects when it is missing.
// The configured view may be given as a bare numeric ID for convenience;
// a value that already carries the prefix is passed through unchanged.
func NormalizeViewID(viewID string) string {
	viewID = strings.TrimSpace(viewID)
	if viewID == "" || strings.HasPrefix(viewID, viewIDPrefix) {
		return viewID
	}
	return viewIDPrefix + viewID
}

func newUpstreamError(err error) *UpstreamError {
	ue := &UpstreamError{Cause: err}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		ue.StatusCode = apiErr.Code
		ue.Message = apiErr.Message
	}
	return ue
}
