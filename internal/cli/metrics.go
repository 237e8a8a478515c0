package cli

import (
	"strings"

	"dplace2cldf/internal/config"
	"dplace2cldf/internal/logging"
	"dplace2cldf/internal/metrics"
	"dplace2cldf/internal/metrics/datadog"
	"dplace2cldf/internal/metrics/prompush"
)

// setupMetrics installs the configured backend and returns a flush function
// to run at exit. A backend that fails to start leaves metrics disabled.
func setupMetrics(cfg config.Config) func() {
	log := logging.L()
	var (
		b   metrics.Backend
		err error
	)
	switch strings.ToLower(cfg.Metrics.Backend) {
	case "", "none":
		log.Debug("metrics: disabled")
		return func() {}
	case "prompush":
		b, err = prompush.NewBackend(cfg.Job, cfg.Metrics.PushgatewayURL)
	case "datadog":
		b, err = datadog.NewBackend(datadog.Config{
			Addr:       cfg.Metrics.DatadogAddr,
			Namespace:  cfg.Metrics.Namespace,
			GlobalTags: cfg.Metrics.Tags,
		})
	default:
		log.Warn("metrics: unknown backend; metrics disabled", "backend", cfg.Metrics.Backend)
		return func() {}
	}
	if err != nil {
		log.Warn("metrics: backend init failed; metrics disabled", "backend", cfg.Metrics.Backend, "err", err)
		return func() {}
	}
	log.Info("metrics: enabled", "backend", cfg.Metrics.Backend, "job", cfg.Job)
	metrics.SetBackend(b)
	return func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics: flush failed", "err", err)
		}
	}
}
