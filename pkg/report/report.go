// Package report ships error reports to durable sinks. A Reporter
// persists one report; the Queue decouples reporting from the request
// path so a slow sink never delays a response.
package report

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bulwark-go/bulwark/pkg/apperr"
	"github.com/bulwark-go/bulwark/pkg/boundary"
)

// Report is a snapshot of one handled error.
type Report struct {
	Kind       string         `json:"kind"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Cause      string         `json:"cause,omitempty"`
	Stack      string         `json:"stack,omitempty"`
	Method     string         `json:"method,omitempty"`
	Path       string         `json:"path,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
	Time       time.Time      `json:"time"`
}

// Reporter persists error reports.
type Reporter interface {
	Report(ctx context.Context, report *Report) error
	Close() error
}

// FromError builds a report from a handled error and the request it
// came from. The request may be nil. Panic stacks are included when
// the cause chain carries one.
func FromError(r *http.Request, err *apperr.Error) *Report {
	report := &Report{
		Kind:       err.Name,
		StatusCode: err.StatusCode,
		Message:    err.Message,
		Data:       err.Data,
		Time:       time.Now().UTC(),
	}
	if err.Err != nil {
		report.Cause = err.Err.Error()
	}
	var pe *boundary.PanicError
	if errors.As(err, &pe) {
		report.Stack = string(pe.Stack)
	}
	if r != nil {
		report.Method = r.Method
		report.Path = r.URL.Path
	}
	return report
}
