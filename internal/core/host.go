package core

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Store provides type representations by name.
type Store interface {
	Fetch(name string) (*TypeDescriptor, error)
}

// ErrNilStore reports host construction without a representation store.
var ErrNilStore = errors.New("representation store cannot be nil")

// Host owns the representation store and the defined types every loader
// shares. Names a loader defers land here: the host defines each name at
// most once, from the pristine representation, and hands the identical *Type
// to every loader asking for it.
type Host struct {
	store Store
	log   *logrus.Logger

	mu      sync.Mutex
	defined map[string]*Type
}

// NewHost returns a host serving representations from store.
func NewHost(store Store) (*Host, error) {
	if store == nil {
		return nil, ErrNilStore
	}

	return &Host{
		store:   store,
		log:     newDiscardLogger(),
		defined: make(map[string]*Type),
	}, nil
}

// SetLogger installs the logger host definitions are traced to.
func (h *Host) SetLogger(logger *logrus.Logger) {
	if logger != nil {
		h.log = logger
	}
}

// Load returns the host's defined type for name, defining it from the
// pristine representation on first request. Safe for concurrent use.
func (h *Host) Load(name string) (*Type, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if t, ok := h.defined[name]; ok {
		return t, nil
	}

	desc, err := h.fetch(name)
	if err != nil {
		return nil, err
	}

	t := newType(desc.Clone(), OriginDeferred, h.Load)
	h.defined[name] = t

	h.log.WithFields(logrus.Fields{
		"name":   name,
		"origin": OriginDeferred.String(),
	}).Debug("defined type")

	return t, nil
}

// Fetch serves the pristine representation from the host's store.
func (h *Host) Fetch(name string) (*TypeDescriptor, error) {
	return h.fetch(name)
}

func (h *Host) fetch(name string) (*TypeDescriptor, error) {
	desc, err := h.store.Fetch(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load representation for %s: %w", name, err)
	}

	if desc == nil {
		return nil, fmt.Errorf("%w: store returned no representation for %s", ErrNilDescriptor, name)
	}

	return desc, nil
}
