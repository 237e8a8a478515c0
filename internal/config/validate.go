package config

import (
	"errors"
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError blocks the run.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is reported but does not block the run.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding. Path is a dotted path into the
// config, e.g. "metrics.pushgateway_url".
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate lints cfg without mutating it.
func Validate(cfg Config) []Issue {
	var issues []Issue
	if strings.TrimSpace(cfg.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it labels metrics and log lines",
		})
	}
	if strings.TrimSpace(cfg.Source.Root) == "" {
		issues = append(issues, Issue{SeverityError, "source.root", "source.root must not be empty"})
	}
	if strings.TrimSpace(cfg.Target.Root) == "" {
		issues = append(issues, Issue{SeverityError, "target.root", "target.root must not be empty"})
	}
	issues = append(issues, validateLog(cfg.Log)...)
	issues = append(issues, validateMetrics(cfg.Metrics)...)
	issues = append(issues, validateExport(cfg.Export)...)
	return issues
}

// Errors joins the error-severity issues, or returns nil when there are none.
func Errors(issues []Issue) error {
	var out []error
	for _, is := range issues {
		if is.Severity == SeverityError {
			out = append(out, is)
		}
	}
	return errors.Join(out...)
}

func validateLog(l Log) []Issue {
	var issues []Issue
	switch strings.ToLower(l.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, Issue{SeverityError, "log.level",
			fmt.Sprintf("unknown log level %q; use debug, info, warn or error", l.Level)})
	}
	switch strings.ToLower(l.Format) {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{SeverityError, "log.format",
			fmt.Sprintf("unknown log format %q; use text or json", l.Format)})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	var issues []Issue
	switch strings.ToLower(m.Backend) {
	case "", "none":
		if m.PushgatewayURL != "" || m.DatadogAddr != "" {
			issues = append(issues, Issue{SeverityWarning, "metrics.backend",
				"metrics endpoints are set but no backend is selected; metrics are discarded"})
		}
	case "prompush":
		if strings.TrimSpace(m.PushgatewayURL) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.pushgateway_url",
				"prompush backend requires pushgateway_url"})
		}
	case "datadog":
		if strings.TrimSpace(m.DatadogAddr) == "" {
			issues = append(issues, Issue{SeverityError, "metrics.datadog_addr",
				"datadog backend requires datadog_addr"})
		}
	default:
		issues = append(issues, Issue{SeverityError, "metrics.backend",
			fmt.Sprintf("unknown metrics backend %q", m.Backend)})
	}
	for i, tag := range m.Tags {
		if !strings.Contains(tag, ":") {
			issues = append(issues, Issue{SeverityWarning, fmt.Sprintf("metrics.tags[%d]", i),
				fmt.Sprintf("tag %q is not of the form key:value", tag)})
		}
	}
	return issues
}

func validateExport(e Export) []Issue {
	if !e.Enabled() {
		return nil
	}
	var issues []Issue
	known := map[string]struct{}{
		"sqlite":   {},
		"postgres": {},
	}
	if _, ok := known[e.Kind]; !ok {
		issues = append(issues, Issue{SeverityWarning, "export.kind",
			fmt.Sprintf("unknown export kind %q; ensure a matching backend is registered", e.Kind)})
	}
	if strings.TrimSpace(e.DSN) == "" {
		issues = append(issues, Issue{SeverityError, "export.dsn", "export.dsn must not be empty"})
	}
	if e.BatchSize <= 0 {
		issues = append(issues, Issue{SeverityWarning, "export.batch_size",
			fmt.Sprintf("batch_size=%d; rows are loaded in a single batch", e.BatchSize)})
	}
	for _, r := range e.TablePrefix {
		if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			issues = append(issues, Issue{SeverityError, "export.table_prefix",
				fmt.Sprintf("table_prefix %q may only hold letters, digits and underscores", e.TablePrefix)})
			break
		}
	}
	return issues
}
