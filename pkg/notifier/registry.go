package notifier

import "fmt"

// Registry is the ordered collection of configured notifier channels.
// It is built once at process start and injected into the fan-out commands;
// there is no ambient global to swap mid-run. Fan-out processes notifiers
// in registration order.
type Registry struct {
	notifiers []Notifier
	keys      map[string]struct{}
}

// NewRegistry creates a registry from the given notifiers, in order.
// Empty and duplicate keys fail construction.
func NewRegistry(notifiers ...Notifier) (*Registry, error) {
	r := &Registry{keys: make(map[string]struct{})}
	for _, n := range notifiers {
		if err := r.Register(n); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustNewRegistry is NewRegistry that panics on error, for process-start
// wiring where a misconfigured channel set should prevent startup.
func MustNewRegistry(notifiers ...Notifier) *Registry {
	r, err := NewRegistry(notifiers...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register appends a notifier to the registry.
func (r *Registry) Register(n Notifier) error {
	if n == nil {
		return ErrNilNotifier
	}
	key := n.Key()
	if key == "" {
		return ErrEmptyNotifierKey
	}
	if _, exists := r.keys[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNotifierKey, key)
	}
	r.keys[key] = struct{}{}
	r.notifiers = append(r.notifiers, n)
	return nil
}

// All returns the notifiers in registration order. The returned slice is a
// copy; mutating it does not affect the registry.
func (r *Registry) All() []Notifier {
	return append([]Notifier(nil), r.notifiers...)
}

// Len returns the number of registered notifiers.
func (r *Registry) Len() int { return len(r.notifiers) }
