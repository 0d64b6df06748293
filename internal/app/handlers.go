package app

import (
	"fmt"

	"github.com/enterprise/ga-view-proxy/internal/analytics"
	"github.com/enterprise/ga-view-proxy/internal/config"
	"github.com/enterprise/ga-view-proxy/internal/handler"
	"github.com/enterprise/ga-view-proxy/internal/report"
	"github.com/enterprise/ga-view-proxy/internal/secrets"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Handlers is the pair of report endpoints sharing one secrets provider,
// analytics factory and metrics set
type Handlers struct {
	Origin *handler.Handler
	Ad     *handler.Handler
}

// NewHandlers wires both report handlers from configuration. registry may be
// nil, in which case no metrics are recorded.
func NewHandlers(cfg *config.Config, provider secrets.Provider, factory analytics.Factory, registry prometheus.Registerer, log logrus.FieldLogger) *Handlers {
	var metrics *handler.Metrics
	if cfg.Metrics.Enabled && registry != nil {
		metrics = handler.NewMetrics(registry, cfg.Metrics.Namespace)
	}

	hcfg := handler.NewConfig(cfg)
	return &Handlers{
		Origin: handler.NewHandler(report.KindOrigin, hcfg, provider, factory, metrics, log),
		Ad:     handler.NewHandler(report.KindAd, hcfg, provider, factory, metrics, log),
	}
}

// For returns the handler serving kind
func (h *Handlers) For(kind report.Kind) (*handler.Handler, error) {
	switch kind {
	case report.KindOrigin:
		return h.Origin, nil
	case report.KindAd:
		return h.Ad, nil
	default:
		return nil, fmt.Errorf("%w: %q", report.ErrUnknownKind, kind)
	}
}
