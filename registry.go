package logging

import (
	stderrs "errors"
	"os"
	"sort"
	"sync"

	"github.com/Station-Manager/errors"
	"go.uber.org/atomic"
)

// Registry holds named handles and a lazily created global handle.
//
// Setup attaches sinks to a name at most once; repeated calls return the
// existing handle unchanged. Global runs Setup with the registry defaults
// exactly once, no matter how many goroutines race on the first call.
type Registry struct {
	mu      sync.Mutex // guards handles
	handles map[string]*Handle

	global   atomic.Pointer[Handle]
	globalMu sync.Mutex

	defaults  []Option
	lookupEnv func(string) (string, bool)
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithDefaults sets the options Global uses for its first-time setup.
func WithDefaults(opts ...Option) RegistryOption {
	return func(r *Registry) { r.defaults = append(r.defaults, opts...) }
}

// WithEnvLookup replaces os.LookupEnv for resolving LOG_LEVEL.
func WithEnvLookup(lookup func(string) (string, bool)) RegistryOption {
	return func(r *Registry) {
		if lookup != nil {
			r.lookupEnv = lookup
		}
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		handles:   make(map[string]*Handle),
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// handle fetches or creates the entry for name.
func (r *Registry) handle(name string) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handles[name]
	if !ok {
		h = newHandle(name)
		r.handles[name] = h
	}
	return h
}

// Setup returns the handle for the configured name, attaching a console sink
// and a rotating file sink the first time the name is set up.
//
// Errors are configuration errors (IsConfigurationError) for an unknown level,
// bad template or out-of-range option, and i/o errors (IsIOError) when the log
// directory or file cannot be created. A failed Setup attaches nothing, so a
// later call starts over.
func (r *Registry) Setup(opts ...Option) (*Handle, error) {
	const op errors.Op = "logging.Registry.Setup"

	cfg := defaultOptions()
	cfg.apply(opts)

	h := r.handle(cfg.Name)
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.configuredLocked() {
		return h, nil
	}

	level, err := resolveLevel(cfg.Level, r.lookupEnv)
	if err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgInvalidLevel)
	}
	if err = validateOptions(cfg); err != nil {
		return nil, errors.New(op).Err(err).Msg(errMsgConfigInvalid)
	}
	if err = h.attachLocked(cfg, level); err != nil {
		return nil, errors.New(op).Err(err).Msg(setupFailureMsg(err))
	}
	return h, nil
}

func setupFailureMsg(err error) string {
	if IsIOError(err) {
		return errMsgOpenFile
	}
	return errMsgConfigInvalid
}

// Global returns the shared handle, setting it up with the registry defaults
// on first use. The fast path is a single atomic load.
func (r *Registry) Global() (*Handle, error) {
	if h := r.global.Load(); h != nil {
		return h, nil
	}

	r.globalMu.Lock()
	defer r.globalMu.Unlock()

	if h := r.global.Load(); h != nil {
		return h, nil
	}

	h, err := r.Setup(r.defaults...)
	if err != nil {
		return nil, err
	}
	r.global.Store(h)
	return h, nil
}

// Get returns the handle registered under name if it has been set up.
func (r *Registry) Get(name string) (*Handle, bool) {
	if name == emptyString {
		name = DefaultName
	}
	r.mu.Lock()
	h, ok := r.handles[name]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.configuredLocked() {
		return nil, false
	}
	return h, true
}

// Names lists the names of set-up handles in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	names := make([]string, 0, len(handles))
	for _, h := range handles {
		h.mu.Lock()
		if h.configuredLocked() {
			names = append(names, h.name)
		}
		h.mu.Unlock()
	}
	sort.Strings(names)
	return names
}

// Close closes every handle in the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	handles := make([]*Handle, 0, len(r.handles))
	for _, h := range r.handles {
		handles = append(handles, h)
	}
	r.mu.Unlock()

	var errs []error
	for _, h := range handles {
		if err := h.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrs.Join(errs...)
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by the package-level functions.
func Default() *Registry { return defaultRegistry }

// Setup configures a handle on the process-wide registry.
func Setup(opts ...Option) (*Handle, error) { return defaultRegistry.Setup(opts...) }

// Global returns the process-wide global handle, creating it on first use.
func Global() (*Handle, error) { return defaultRegistry.Global() }

// MustGlobal is Global for program startup: it panics if the handle cannot be set up.
func MustGlobal() *Handle {
	h, err := Global()
	if err != nil {
		panic(err)
	}
	return h
}
