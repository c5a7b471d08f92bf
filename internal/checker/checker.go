// Package checker defines the contract every checking backend implements
// and dispatches a Documentation to all enabled backends.
package checker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jward/docspell/internal/config"
	"github.com/jward/docspell/internal/doc"
	"github.com/jward/docspell/internal/suggestion"
)

// ErrUnavailable is returned by Available when a backend's external
// dependency (binary, dictionary, server) cannot be reached.
var ErrUnavailable = errors.New("checker: backend unavailable")

// Checker is a backend configured with its own type C.
type Checker[C any] interface {
	Detector() suggestion.Detector
	Check(ctx context.Context, docu *doc.Documentation, cfg C) (*suggestion.Set, error)
}

// Prober is implemented by checkers that can tell up front whether they
// are able to run.
type Prober interface {
	Available() error
}

// Entry is a registered checker with its configuration type erased.
type Entry struct {
	detector suggestion.Detector
	run      func(ctx context.Context, docu *doc.Documentation, cfg *config.Config) (*suggestion.Set, error)
	probe    func() error
}

// Register binds c to the sub-configuration pick selects.
func Register[C any](c Checker[C], pick func(*config.Config) C) Entry {
	e := Entry{
		detector: c.Detector(),
		run: func(ctx context.Context, docu *doc.Documentation, cfg *config.Config) (*suggestion.Set, error) {
			return c.Check(ctx, docu, pick(cfg))
		},
	}
	if p, ok := any(c).(Prober); ok {
		e.probe = p.Available
	}
	return e
}

// Detector returns the detector of the registered checker.
func (e Entry) Detector() suggestion.Detector { return e.detector }

// SkipReason says why a detector did not run.
type SkipReason uint8

const (
	NotBuilt SkipReason = iota + 1
	Disabled
	Unavailable
)

func (r SkipReason) String() string {
	switch r {
	case NotBuilt:
		return "not built"
	case Disabled:
		return "disabled"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("skip(%d)", uint8(r))
}

// Registry holds the checkers built into the binary, one per detector.
type Registry struct {
	entries map[suggestion.Detector]Entry
}

// NewRegistry builds a registry. A later entry replaces an earlier one for
// the same detector.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[suggestion.Detector]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.detector] = e
	}
	return r
}

// Has reports whether a checker is registered for d.
func (r *Registry) Has(d suggestion.Detector) bool {
	_, ok := r.entries[d]
	return ok
}

// Dispatch runs every registered and enabled checker over docu in detector
// order and merges their findings. Skipped detectors are reported to obs
// and are not failures. The first checker error aborts the pass. The
// merged set is sorted before it is returned.
func (r *Registry) Dispatch(ctx context.Context, docu *doc.Documentation, cfg *config.Config, obs Observer) (*suggestion.Set, error) {
	if obs == nil {
		obs = nopObserver{}
	}
	out := suggestion.NewSet()
	for _, d := range suggestion.AllDetectors() {
		e, ok := r.entries[d]
		if !ok {
			obs.Skipped(d, NotBuilt, nil)
			continue
		}
		if !cfg.IsEnabled(d) {
			obs.Skipped(d, Disabled, nil)
			continue
		}
		if e.probe != nil {
			if err := e.probe(); err != nil {
				obs.Skipped(d, Unavailable, err)
				continue
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		obs.Started(d)
		start := time.Now()
		set, err := e.run(ctx, docu, cfg)
		if err != nil {
			return nil, fmt.Errorf("checker: %s: %w", d, err)
		}
		obs.Finished(d, set.Total(), time.Since(start))
		out.Join(set)
	}
	out.Sort()
	return out, nil
}
