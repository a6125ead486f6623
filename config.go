package bulwark

import (
	"log/slog"

	"github.com/bulwark-go/bulwark/pkg/auth"
	"github.com/bulwark-go/bulwark/pkg/boundary"
	"github.com/bulwark-go/bulwark/pkg/middleware"
	"github.com/bulwark-go/bulwark/pkg/report"
)

// Config is the main application configuration.
// The zero value gives a production-mode app with the default fallback
// page, metrics, tracing, and no reporting.
type Config struct {
	// DevMode enables development rendering: fallback pages include
	// the cause chain and panic stacks, and CSRF validation is
	// skipped.
	// SECURITY: NEVER use in production - internals leak to clients
	// and CSRF protection is off.
	DevMode bool

	// Logger is the structured logger for the application.
	// If nil, slog.Default() is used.
	Logger *slog.Logger

	// Fallbacks maps error kind names to fallback views on the root
	// boundary. Kinds without an entry render the default page.
	//
	// Example:
	//
	//	Fallbacks: map[string]boundary.Fallback{
	//	    apperr.NameAuthentication: loginRedirect,
	//	}
	Fallbacks map[string]boundary.Fallback

	// Reporter receives reports for handled errors. Nil disables
	// reporting. Delivery is asynchronous; see pkg/report.
	Reporter report.Reporter

	// ReportMinStatus filters which handled errors are reported.
	// Default: 500, so expected client errors stay out of the sink.
	ReportMinStatus int

	// DisableMetrics turns off the Prometheus middleware.
	DisableMetrics bool

	// MetricsOptions configure the Prometheus middleware.
	MetricsOptions []middleware.MetricsOption

	// DisableTracing turns off the OpenTelemetry middleware.
	DisableTracing bool

	// TracingOptions configure the OpenTelemetry middleware.
	TracingOptions []middleware.OTelOption

	// CSRF, when set, is mounted as middleware protecting
	// state-changing requests. Failures render through the boundary
	// like any other error.
	CSRF *auth.CSRF
}

func (cfg Config) withDefaults() Config {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.ReportMinStatus == 0 {
		cfg.ReportMinStatus = 500
	}
	return cfg
}
