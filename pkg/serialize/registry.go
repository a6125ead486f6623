package serialize

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/bulwark-go/bulwark/pkg/apperr"
)

// Envelope is the wire form of an error crossing the boundary.
type Envelope struct {
	Name       string         `json:"name"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Data       map[string]any `json:"data,omitempty"`
}

// Factory reconstructs a concrete error from a received envelope.
// Register one when the receiving side needs something richer than the
// default *apperr.Error reconstruction.
type Factory func(env Envelope) error

type entry struct {
	fields  map[string]struct{}
	factory Factory
}

// Option configures a registration.
type Option func(*entry)

// WithFields allow-lists extra data fields for a kind. Fields not
// listed here are stripped before the error leaves the server.
func WithFields(fields ...string) Option {
	return func(e *entry) {
		if e.fields == nil {
			e.fields = make(map[string]struct{}, len(fields))
		}
		for _, f := range fields {
			e.fields[f] = struct{}{}
		}
	}
}

// WithFactory sets a custom reconstruction hook for a kind.
func WithFactory(f Factory) Option {
	return func(e *entry) {
		e.factory = f
	}
}

// Registry maps error kind names to their serialization rules.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates a registry with the built-in kinds
// pre-registered. RedirectError allow-lists its "url" field; the other
// built-ins carry no extra data.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[string]entry)}
	r.Register(apperr.NameError)
	r.Register(apperr.NameAuthentication)
	r.Register(apperr.NameCSRFTokenMismatch)
	r.Register(apperr.NameAuthorization)
	r.Register(apperr.NameNotFound)
	r.Register(apperr.NameRedirect, WithFields(apperr.RedirectURLKey))
	return r
}

// Register adds a kind to the registry. Registering an existing name
// replaces its rules.
func (r *Registry) Register(name string, opts ...Option) {
	var e entry
	for _, opt := range opts {
		opt(&e)
	}
	r.mu.Lock()
	r.entries[name] = e
	r.mu.Unlock()
}

// Registered reports whether a kind name is known to the registry.
func (r *Registry) Registered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[name]
	return ok
}

// Names returns all registered kind names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func (r *Registry) lookup(name string) (entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Envelope converts an error to its wire form without encoding it.
// Unregistered kinds and non-application errors flatten to the generic
// "Error" kind with the cause stripped.
func (r *Registry) Envelope(err error) Envelope {
	ae, ok := apperr.From(err)
	if !ok {
		ae = apperr.Internal(err)
	}

	e, registered := r.lookup(ae.Name)
	if !registered {
		// Unregistered kinds lose their identity on the wire. The
		// status and message still describe the failure to the client.
		return Envelope{
			Name:       apperr.NameError,
			StatusCode: ae.StatusCode,
			Message:    ae.Message,
		}
	}

	env := Envelope{
		Name:       ae.Name,
		StatusCode: ae.StatusCode,
		Message:    ae.Message,
	}
	for key, value := range ae.Data {
		if _, allowed := e.fields[key]; !allowed {
			continue
		}
		if env.Data == nil {
			env.Data = make(map[string]any)
		}
		env.Data[key] = value
	}
	return env
}

// Marshal encodes an error for transport.
func (r *Registry) Marshal(err error) ([]byte, error) {
	return json.Marshal(r.Envelope(err))
}

// Unmarshal reconstructs an error from its wire form. The returned
// error is the reconstructed application error; the second return
// value reports decode failures.
func (r *Registry) Unmarshal(data []byte) (error, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("serialize: decode envelope: %w", err)
	}
	return r.FromEnvelope(env), nil
}

// FromEnvelope reconstructs an error from a decoded envelope.
func (r *Registry) FromEnvelope(env Envelope) error {
	e, registered := r.lookup(env.Name)
	if !registered {
		// Unknown incoming kind: degrade to the generic kind but keep
		// what the status and message say. Data from an unknown kind
		// is never trusted.
		return apperr.New(apperr.NameError, env.StatusCode, env.Message)
	}

	if e.factory != nil {
		return e.factory(env)
	}

	ae := apperr.New(env.Name, env.StatusCode, env.Message)
	for key, value := range env.Data {
		if _, allowed := e.fields[key]; allowed {
			ae.WithData(key, value)
		}
	}
	return ae
}

// defaultRegistry backs the package-level functions.
var defaultRegistry = NewRegistry()

// Default returns the package-level registry.
func Default() *Registry {
	return defaultRegistry
}

// Register adds a kind to the default registry.
func Register(name string, opts ...Option) {
	defaultRegistry.Register(name, opts...)
}

// Marshal encodes an error using the default registry.
func Marshal(err error) ([]byte, error) {
	return defaultRegistry.Marshal(err)
}

// Unmarshal reconstructs an error using the default registry.
func Unmarshal(data []byte) (error, error) {
	return defaultRegistry.Unmarshal(data)
}
