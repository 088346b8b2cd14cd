package enable

// Enable wraps a configuration section of type T that is turned on or off by
// its enable field. The zero value is off. Values are immutable once
// constructed: new states come from On, Off, or one of the Unmarshal entry
// points, never from mutating an existing value in place.
type Enable[T any] struct {
	enabled bool
	inner   T
}

// On returns an enabled wrapper around inner.
func On[T any](inner T) Enable[T] {
	return Enable[T]{enabled: true, inner: inner}
}

// Off returns a disabled wrapper. A disabled wrapper carries no payload,
// even if it was decoded from a document with stale section fields.
func Off[T any]() Enable[T] {
	return Enable[T]{}
}

// IsEnabled reports whether the section is on.
func (e Enable[T]) IsEnabled() bool {
	return e.enabled
}

// Inner returns a copy of the payload and whether the section is on.
func (e Enable[T]) Inner() (T, bool) {
	return e.inner, e.enabled
}

// InnerRef returns a pointer to the payload, or nil when the section is off.
func (e *Enable[T]) InnerRef() *T {
	if !e.enabled {
		return nil
	}
	return &e.inner
}

// Validater is a type that can validate itself.
type Validater interface {
	Validate() error
}

// Validate is a no-op when the section is off. When on it delegates to the
// payload if the payload implements Validater.
func (e Enable[T]) Validate() error {
	if !e.enabled {
		return nil
	}
	if v, ok := any(&e.inner).(Validater); ok {
		return v.Validate()
	}
	if v, ok := any(e.inner).(Validater); ok {
		return v.Validate()
	}
	return nil
}
