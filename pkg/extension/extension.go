// Package extension implements the host-primitive extension mechanism
// spec section 6 leaves as an external collaborator: an extension
// bundles a setup hook, a symmetric before/after-ask hook pair, and a
// set of named primitive generators, found by Lookup and All. The
// `@from "module" use name|all` statement parses into
// action.UsePredicate, which does not install them.
package extension

import (
	"github.com/gitrdm/judged/pkg/jerr"
	"github.com/gitrdm/judged/pkg/kb"
	"github.com/gitrdm/judged/pkg/logic"
)

// Handle is the slice of a Context an extension needs, defined here on
// the consumer side so this package never imports package worlds.
type Handle interface {
	KB() *kb.KnowledgeBase
	NS() *logic.Namespace
}

// Primitive names a generator exposed for `@from ... use` import.
type Primitive struct {
	Predicate *logic.Predicate
	Generator kb.Generator
}

// Extension is a named bundle of setup/ask hooks and primitives,
// mirroring the teacher's hook-composition idiom in
// control_flow.go, generalized from goal composition to context
// lifecycle hooks.
type Extension struct {
	Name       string
	Setup      func(h Handle, config map[string]any) error
	BeforeAsk  func(h Handle) error
	AfterAsk   func(h Handle) error
	Primitives map[string]Primitive
}

// DoSetup invokes ext's Setup hook, if any, wrapping a failure in a
// jerr.ExtensionError (spec section 7).
func (ext *Extension) DoSetup(h Handle, config map[string]any) error {
	if ext.Setup == nil {
		return nil
	}
	if err := ext.Setup(h, config); err != nil {
		return jerr.ExtensionErrorWrap(err, "extension %q setup failed", ext.Name)
	}
	return nil
}

// DoBeforeAsk and DoAfterAsk invoke the matching hook, if any.
// Registry.RunAsk guarantees these are always called as a symmetric
// pair around a query even when the query itself fails.
func (ext *Extension) DoBeforeAsk(h Handle) error {
	if ext.BeforeAsk == nil {
		return nil
	}
	return wrapHook(ext.Name, "before_ask", ext.BeforeAsk(h))
}

func (ext *Extension) DoAfterAsk(h Handle) error {
	if ext.AfterAsk == nil {
		return nil
	}
	return wrapHook(ext.Name, "after_ask", ext.AfterAsk(h))
}

func wrapHook(name, hook string, err error) error {
	if err == nil {
		return nil
	}
	return jerr.ExtensionErrorWrap(err, "extension %q %s hook failed", name, hook)
}

// Lookup finds a primitive by name; All returns every primitive.
// Primitives is a map, so the order All returns them in is not defined.
func (ext *Extension) Lookup(name string) (Primitive, bool) {
	p, ok := ext.Primitives[name]
	return p, ok
}

func (ext *Extension) All() []Primitive {
	out := make([]Primitive, 0, len(ext.Primitives))
	for _, p := range ext.Primitives {
		out = append(out, p)
	}
	return out
}

// Registry tracks the extensions a context has activated, invoking
// their hooks with guaranteed symmetric pairing even on failure (spec
// section 4.H), following the teacher's ExitStack-free but equally
// paired defer-based idiom.
type Registry struct {
	byName map[string]*Extension
	order  []string
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Extension)}
}

// Use installs ext, running its setup hook against h and config.
func (r *Registry) Use(h Handle, ext *Extension, config map[string]any) error {
	if err := ext.DoSetup(h, config); err != nil {
		return err
	}
	if _, exists := r.byName[ext.Name]; !exists {
		r.order = append(r.order, ext.Name)
	}
	r.byName[ext.Name] = ext
	return nil
}

// Get returns the extension registered under name, if any.
func (r *Registry) Get(name string) (*Extension, bool) {
	ext, ok := r.byName[name]
	return ext, ok
}

// RunAsk invokes every registered extension's before_ask hook, then fn,
// then every extension's after_ask hook in reverse registration order —
// guaranteeing the after_ask pairing runs even when fn or an earlier
// before_ask hook fails.
func (r *Registry) RunAsk(h Handle, fn func() error) error {
	fired := make([]string, 0, len(r.order))
	var beforeErr error
	for _, name := range r.order {
		ext := r.byName[name]
		if err := ext.DoBeforeAsk(h); err != nil {
			beforeErr = err
			break
		}
		fired = append(fired, name)
	}

	var runErr error
	if beforeErr == nil {
		runErr = fn()
	}

	for i := len(fired) - 1; i >= 0; i-- {
		ext := r.byName[fired[i]]
		_ = ext.DoAfterAsk(h) // after_ask failures do not mask the ask's own result
	}

	if beforeErr != nil {
		return beforeErr
	}
	return runErr
}
