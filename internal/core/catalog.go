package core

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Sentinel errors for catalog registration and lookup.
var (
	ErrNotFound      = errors.New("type not found")
	ErrUnnamedType   = errors.New("descriptor has no name")
	ErrDuplicateType = errors.New("type already registered")
)

// Catalog is an in-memory representation store. Registration stores a clone,
// so later mutation of the caller's descriptor never reaches the catalog.
// Safe for concurrent use.
type Catalog struct {
	mu    sync.RWMutex
	types map[string]*TypeDescriptor
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{types: make(map[string]*TypeDescriptor)}
}

// Register adds a descriptor under its name. Nil descriptors, unnamed
// descriptors, and duplicate names are errors.
func (c *Catalog) Register(desc *TypeDescriptor) error {
	if desc == nil {
		return ErrNilDescriptor
	}

	if desc.Name == "" {
		return ErrUnnamedType
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.types[desc.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateType, desc.Name)
	}

	c.types[desc.Name] = desc.Clone()

	return nil
}

// Fetch returns the descriptor registered under name. The result is the
// catalog's own copy; treat it as immutable.
func (c *Catalog) Fetch(name string) (*TypeDescriptor, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	desc, ok := c.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return desc, nil
}

// Names returns the sorted names of every registered type.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.types))
	for name := range c.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
