// Package registry maintains the action catalog: the mapping from action
// type to descriptor. The catalog is built from an explicit factory manifest,
// memoized behind an atomic snapshot for lock-free reads, and rebuilt on
// demand via Invalidate or after the discovery cache TTL lapses. Concurrent
// cold reads share a single build through singleflight.
package registry

import (
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	actionDomain "github.com/actiongate/actiongate/internal/action/domain"
	apperrors "github.com/actiongate/actiongate/internal/errors"
)

// Factory constructs one action handler. Factories run during discovery, so
// references they capture must be ready before the first build.
type Factory func() actionDomain.Handler

// Config holds the registry build settings.
type Config struct {
	// DisabledActions lists action types registered as disabled. Disabled
	// actions stay visible to documentation but dispatch as unregistered.
	DisabledActions []string

	// CacheTTL bounds how long a built snapshot satisfies Discover without a
	// rebuild. Zero keeps the snapshot until Invalidate is called.
	CacheTTL time.Duration
}

// snapshot is one immutable build of the catalog. Readers hold it only long
// enough to look up a descriptor; a rebuild publishes a new snapshot instead
// of mutating the current one.
type snapshot struct {
	byType  map[string]*actionDomain.Descriptor
	ordered []*actionDomain.Descriptor
	builtAt time.Time
}

// Registry maps action types to descriptors.
type Registry struct {
	disabled map[string]struct{}
	ttl      time.Duration

	mu        sync.Mutex // guards manifest changes and snapshot builds
	factories []Factory
	manual    []*actionDomain.Descriptor

	group    singleflight.Group
	snapshot atomic.Pointer[snapshot]
}

// SetManifest replaces the factory manifest. Intended for bootstrap wiring,
// where factories capture references constructed after the registry itself.
// Any built snapshot is discarded so the next use rebuilds from the new
// manifest.
func (r *Registry) SetManifest(factories []Factory) {
	r.mu.Lock()
	r.factories = slices.Clone(factories)
	r.snapshot.Store(nil)
	r.mu.Unlock()
}

// Register adds a pre-built descriptor to the catalog. The descriptor's
// Enabled flag is honored; the configured disabled list still forces it off.
// Registering an action type that already exists is rejected with ErrConflict
// and leaves the catalog unchanged.
func (r *Registry) Register(descriptor *actionDomain.Descriptor) error {
	if err := descriptor.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.manual = append(r.manual, descriptor)
	snap, err := r.buildLocked()
	if err != nil {
		r.manual = r.manual[:len(r.manual)-1]
		return err
	}
	r.snapshot.Store(snap)
	return nil
}

// Discover builds the catalog from the manifest. Within the cache TTL a
// repeated call is a no-op, and concurrent calls share one build, so racing
// cold dispatches trigger exactly one discovery run.
func (r *Registry) Discover() error {
	if snap := r.snapshot.Load(); snap != nil && r.fresh(snap) {
		return nil
	}

	_, err, _ := r.group.Do("discover", func() (interface{}, error) {
		// Re-check after winning the flight; a concurrent caller may have
		// just rebuilt.
		if snap := r.snapshot.Load(); snap != nil && r.fresh(snap) {
			return snap, nil
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		snap, err := r.buildLocked()
		if err != nil {
			return nil, err
		}
		r.snapshot.Store(snap)
		return snap, nil
	})
	return err
}

// Invalidate discards the built catalog. The next read rebuilds it from the
// manifest.
func (r *Registry) Invalidate() {
	r.snapshot.Store(nil)
}

// Resolve returns the descriptor registered under the action type, building
// the catalog on first use. Disabled descriptors resolve normally so
// documentation can see them; the dispatcher treats them as unregistered.
// Returns ErrActionNotFound for an unknown action type.
func (r *Registry) Resolve(actionType string) (*actionDomain.Descriptor, error) {
	snap, err := r.ensure()
	if err != nil {
		return nil, err
	}

	descriptor, ok := snap.byType[actionType]
	if !ok {
		return nil, apperrors.Wrapf(apperrors.ErrActionNotFound, "action %q is not registered", actionType)
	}
	return descriptor, nil
}

// ListAll returns every registered descriptor in action type order, building
// the catalog on first use. Callers must not mutate the descriptors.
func (r *Registry) ListAll() ([]*actionDomain.Descriptor, error) {
	snap, err := r.ensure()
	if err != nil {
		return nil, err
	}
	return slices.Clone(snap.ordered), nil
}

// ensure returns the current snapshot, building it if none exists. Reads
// never rebuild an expired snapshot; only Discover and Invalidate do.
func (r *Registry) ensure() (*snapshot, error) {
	if snap := r.snapshot.Load(); snap != nil {
		return snap, nil
	}

	v, err, _ := r.group.Do("discover", func() (interface{}, error) {
		if snap := r.snapshot.Load(); snap != nil {
			return snap, nil
		}

		r.mu.Lock()
		defer r.mu.Unlock()

		snap, err := r.buildLocked()
		if err != nil {
			return nil, err
		}
		r.snapshot.Store(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*snapshot), nil
}

func (r *Registry) fresh(snap *snapshot) bool {
	return r.ttl <= 0 || time.Since(snap.builtAt) < r.ttl
}

// buildLocked constructs a snapshot from the factory manifest and the manual
// registrations. Duplicate action types fail the build deterministically.
// Callers must hold mu.
func (r *Registry) buildLocked() (*snapshot, error) {
	byType := make(map[string]*actionDomain.Descriptor, len(r.factories)+len(r.manual))

	for _, factory := range r.factories {
		handler := factory()
		if handler == nil {
			return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "action factory returned no handler")
		}

		descriptor := handler.Describe()
		descriptor.Handler = handler
		descriptor.RequiredCapabilities = handler.RequiredCapabilities()
		descriptor.Enabled = !r.isDisabled(descriptor.ActionType)

		if err := addDescriptor(byType, &descriptor); err != nil {
			return nil, err
		}
	}

	for _, manual := range r.manual {
		descriptor := *manual
		descriptor.Enabled = manual.Enabled && !r.isDisabled(descriptor.ActionType)

		if err := addDescriptor(byType, &descriptor); err != nil {
			return nil, err
		}
	}

	ordered := make([]*actionDomain.Descriptor, 0, len(byType))
	for _, descriptor := range byType {
		ordered = append(ordered, descriptor)
	}
	slices.SortFunc(ordered, func(a, b *actionDomain.Descriptor) int {
		return strings.Compare(a.ActionType, b.ActionType)
	})

	return &snapshot{byType: byType, ordered: ordered, builtAt: time.Now()}, nil
}

func addDescriptor(byType map[string]*actionDomain.Descriptor, descriptor *actionDomain.Descriptor) error {
	if err := descriptor.Validate(); err != nil {
		return err
	}
	if _, exists := byType[descriptor.ActionType]; exists {
		return apperrors.Wrapf(apperrors.ErrConflict, "action %q is already registered", descriptor.ActionType)
	}
	byType[descriptor.ActionType] = descriptor
	return nil
}

func (r *Registry) isDisabled(actionType string) bool {
	_, ok := r.disabled[actionType]
	return ok
}

// New creates an empty registry. Provide the factory manifest with
// SetManifest before the first dispatch.
func New(cfg Config) *Registry {
	disabled := make(map[string]struct{}, len(cfg.DisabledActions))
	for _, actionType := range cfg.DisabledActions {
		actionType = strings.TrimSpace(actionType)
		if actionType != "" {
			disabled[actionType] = struct{}{}
		}
	}

	return &Registry{
		disabled: disabled,
		ttl:      cfg.CacheTTL,
	}
}
