package boundary

import (
	"context"
	"net/http"
	"sync"

	"github.com/bulwark-go/bulwark/pkg/apperr"
)

// Recorded exposes the error a boundary handled to middleware mounted
// outside the boundary. Metrics and tracing middleware install one
// before calling the next handler and read it afterwards; the boundary
// fills it in when it renders a fallback.
type Recorded struct {
	mu  sync.Mutex
	err *apperr.Error
}

// Get returns the recorded error, or nil if the request succeeded.
func (rec *Recorded) Get() *apperr.Error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.err
}

func (rec *Recorded) set(err *apperr.Error) {
	rec.mu.Lock()
	rec.err = err
	rec.mu.Unlock()
}

type recordedKey struct{}

// InstallRecorder attaches a Recorded slot to the request context.
// Returns the request to pass downstream and the slot to read after
// the handler returns. Stacked middleware share one slot: installing
// on a request that already carries one returns the existing slot.
func InstallRecorder(r *http.Request) (*http.Request, *Recorded) {
	if rec, ok := r.Context().Value(recordedKey{}).(*Recorded); ok {
		return r, rec
	}
	rec := &Recorded{}
	ctx := context.WithValue(r.Context(), recordedKey{}, rec)
	return r.WithContext(ctx), rec
}

// record stores the handled error in the request's Recorded slot, if
// one was installed.
func record(r *http.Request, err *apperr.Error) {
	if rec, ok := r.Context().Value(recordedKey{}).(*Recorded); ok {
		rec.set(err)
	}
}
