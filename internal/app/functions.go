package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/enterprise/ga-view-proxy/internal/analytics"
	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/enterprise/ga-view-proxy/internal/handler"
	"github.com/enterprise/ga-view-proxy/internal/report"
	"github.com/enterprise/ga-view-proxy/internal/secrets"
	"github.com/enterprise/ga-view-proxy/pkg/logger"
	"github.com/sirupsen/logrus"
)

// functionHost builds the handler pair at most once per process and serves
// the serverless entrypoints from it
type functionHost struct {
	build func() (*Handlers, error)

	once     sync.Once
	handlers *Handlers
	err      error
}

var defaultHost = &functionHost{build: buildFunctionHandlers}

// FunctionHandlers builds the handlers once per process for serverless
// entrypoints. Configuration comes from the environment only.
func FunctionHandlers() (*Handlers, error) {
	return defaultHost.load()
}

// ServeFunction is the net/http entrypoint for a serverless report function
func ServeFunction(kind report.Kind, w http.ResponseWriter, r *http.Request) {
	defaultHost.serveHTTP(kind, w, r)
}

// LambdaFunction returns the API Gateway entrypoint for a report function
func LambdaFunction(kind report.Kind) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return defaultHost.lambda(kind)
}

func buildFunctionHandlers() (*Handlers, error) {
	cfg, err := config.Load("")
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(cfg.Logging)

	provider, err := secrets.New(cfg.Secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to create secrets provider: %w", err)
	}

	// Nothing scrapes a function instance, so metrics stay off here.
	return NewHandlers(cfg, provider, analytics.NewGAClientFactory(cfg.Analytics.Timeout), nil, log), nil
}

func (f *functionHost) load() (*Handlers, error) {
	f.once.Do(func() {
		f.handlers, f.err = f.build()
	})
	return f.handlers, f.err
}

func (f *functionHost) serveHTTP(kind report.Kind, w http.ResponseWriter, r *http.Request) {
	h, err := f.handler(kind)
	if err != nil {
		resp := handler.Unavailable(handler.Request{Method: r.Method, Header: r.Header})
		if werr := handler.WriteResponse(w, resp); werr != nil {
			logrus.WithError(werr).Warn("Failed to write response body")
		}
		return
	}
	h.ServeHTTP(w, r)
}

func (f *functionHost) lambda(kind report.Kind) func(context.Context, events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		h, err := f.handler(kind)
		if err != nil {
			return handler.LambdaResponse(handler.Unavailable(handler.LambdaRequest(event))), nil
		}
		return h.HandleLambda(ctx, event)
	}
}

func (f *functionHost) handler(kind report.Kind) (*handler.Handler, error) {
	handlers, err := f.load()
	if err != nil {
		logrus.WithError(err).WithField("report", kind).Error("Report function is not configured")
		return nil, err
	}
	return handlers.For(kind)
}
