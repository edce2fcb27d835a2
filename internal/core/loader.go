// Package core implements the load-time interception and object synthesis
// machinery behind changeling's public API: pattern-driven type resolution,
// the transformation pipeline, stub synthesis, and default field filling.
package core

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sentinel errors for loader construction and resolution.
var (
	ErrNilHost         = errors.New("host cannot be nil")
	ErrPipelineSealed  = errors.New("pipeline cannot change after the first resolution")
	ErrNilTransformer  = errors.New("transformer cannot be nil")
	ErrTransformFailed = errors.New("failed to transform type")
)

// unexported variables.
var (
	// Names deferred by every loader: the platform's own types, defined once
	// by the host and shared.
	//nolint:gochecknoglobals // Built-in defer patterns are part of the resolution contract
	defaultDeferPatterns = []string{"std.", "runtime."}
	// Names every loader defines unmodified: framework infrastructure and
	// synthesized stubs must stay functional inside transformed code.
	//nolint:gochecknoglobals // Built-in ignore patterns are part of the resolution contract
	ignorePatterns = []string{"changeling.", "stub."}
)

// Loader resolves type names into defined types, deciding per name whether
// to defer to the host, define the pristine representation, or rewrite a
// working copy through the transformation pipeline first. Each name resolves
// at most once per loader; repeated resolutions return the identical *Type.
//
// The pattern sets are fixed at construction. The pipeline is fixed from the
// first resolution on. Resolution is safe for concurrent use.
type Loader struct {
	host      *Host
	deferSet  patternSet
	ignoreSet patternSet
	modifySet patternSet
	id        string

	mu       sync.Mutex
	sealed   bool
	pipeline []Transformer
	defined  map[string]*Type
	log      *logrus.Entry
}

// NewLoader returns a loader over host. Names matching an entry of modify
// resolve through the transformation pipeline; the sole entry "*" claims
// every name. extraDefer extends the built-in defer patterns.
//
// Deferral wins over modification: modify entries the defer set claims are
// discarded here, so the two sets never fight over a name at resolution
// time.
func NewLoader(host *Host, modify []string, extraDefer ...string) (*Loader, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	deferEntries := make([]string, 0, len(defaultDeferPatterns)+len(extraDefer))
	deferEntries = append(deferEntries, defaultDeferPatterns...)
	deferEntries = append(deferEntries, extraDefer...)
	deferSet := newPatternSet(deferEntries)

	kept := make([]string, 0, len(modify))

	for _, entry := range modify {
		if entry != "*" && deferSet.matches(strings.TrimSuffix(entry, "*")) {
			continue
		}

		kept = append(kept, entry)
	}

	loader := &Loader{
		host:      host,
		deferSet:  deferSet,
		ignoreSet: newPatternSet(ignorePatterns),
		modifySet: newPatternSet(kept),
		id:        uuid.New().String(),
		defined:   make(map[string]*Type),
	}
	loader.log = newDiscardLogger().WithField("loader", loader.id)

	return loader, nil
}

// ID returns the loader's session id, the value resolution traces are tagged
// with.
func (l *Loader) ID() string {
	return l.id
}

// SetLogger installs the logger resolution decisions are traced to. Trace
// entries carry the loader id so interleaved loaders stay attributable.
func (l *Loader) SetLogger(logger *logrus.Logger) {
	if logger == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.log = logger.WithField("loader", l.id)
}

// SetPipeline installs the ordered stages applied to every name the modify
// set claims. The pipeline is part of the loader's identity once resolution
// starts: calls after the first Resolve fail.
func (l *Loader) SetPipeline(stages ...Transformer) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.sealed {
		return ErrPipelineSealed
	}

	for i, stage := range stages {
		if stage == nil {
			return fmt.Errorf("%w: stage %d", ErrNilTransformer, i)
		}
	}

	l.pipeline = make([]Transformer, len(stages))
	copy(l.pipeline, stages)

	return nil
}

// Resolve returns this loader's defined type for name, defining it on first
// request. Fetch and transform failures fail the resolution and define
// nothing; the same name may be resolved again afterwards.
func (l *Loader) Resolve(name string) (*Type, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sealed = true

	if t, ok := l.defined[name]; ok {
		return t, nil
	}

	t, err := l.define(name)
	if err != nil {
		return nil, err
	}

	l.defined[name] = t

	return t, nil
}

// define routes a first-seen name per the decision order: defer, ignore,
// modify, then unlisted (defined unmodified).
func (l *Loader) define(name string) (*Type, error) {
	switch {
	case l.deferSet.matches(name):
		l.trace(name, "defer")

		return l.host.Load(name)
	case l.ignoreSet.matches(name):
		l.trace(name, "ignore")

		return l.defineUnmodified(name)
	case l.modifySet.matches(name):
		return l.defineTransformed(name)
	default:
		l.trace(name, "unlisted")

		return l.defineUnmodified(name)
	}
}

// defineUnmodified defines the pristine representation under a fresh
// identity: same behavior, distinct type.
func (l *Loader) defineUnmodified(name string) (*Type, error) {
	desc, err := l.host.Fetch(name)
	if err != nil {
		return nil, err
	}

	return newType(desc.Clone(), OriginUnmodified, l.Resolve), nil
}

// defineTransformed runs the pipeline on a working copy and defines the
// result. Interface kinds are never transformed; they defer to the host
// instead.
func (l *Loader) defineTransformed(name string) (*Type, error) {
	desc, err := l.host.Fetch(name)
	if err != nil {
		return nil, err
	}

	if desc.Kind == KindInterface {
		l.trace(name, "defer interface")

		return l.host.Load(name)
	}

	l.trace(name, "transform")

	work := desc.Clone()

	for i, stage := range l.pipeline {
		work, err = stage.Transform(work)
		if err != nil {
			return nil, fmt.Errorf("%w %s: stage %d: %w", ErrTransformFailed, name, i, err)
		}

		if work == nil {
			return nil, fmt.Errorf("%w %s: stage %d returned no representation", ErrTransformFailed, name, i)
		}
	}

	l.log.WithFields(logrus.Fields{
		"name":   name,
		"stages": len(l.pipeline),
	}).Debug("transformed type")

	return newType(work, OriginTransformed, l.Resolve), nil
}

func (l *Loader) trace(name, decision string) {
	l.log.WithFields(logrus.Fields{
		"name":     name,
		"decision": decision,
	}).Debug("resolving type")
}

// patternSet classifies type names. An entry ending in "." or ".*" matches
// any name with that dotted prefix; the sole entry "*" matches every name;
// any other entry matches exactly. Empty entries are dropped.
type patternSet struct {
	wildcard bool
	exact    map[string]struct{}
	prefixes []string
}

func newPatternSet(entries []string) patternSet {
	ps := patternSet{exact: make(map[string]struct{})}

	for _, entry := range entries {
		switch {
		case entry == "":
			continue
		case entry == "*":
			ps.wildcard = true
		case strings.HasSuffix(entry, ".*"):
			ps.prefixes = append(ps.prefixes, strings.TrimSuffix(entry, "*"))
		case strings.HasSuffix(entry, "."):
			ps.prefixes = append(ps.prefixes, entry)
		default:
			ps.exact[entry] = struct{}{}
		}
	}

	return ps
}

func (ps patternSet) matches(name string) bool {
	if ps.wildcard {
		return true
	}

	if _, ok := ps.exact[name]; ok {
		return true
	}

	for _, prefix := range ps.prefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}

	return false
}
