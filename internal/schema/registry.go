// internal/schema/registry.go
package schema

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrInvalidSchema is returned at construction time only. It is fatal to startup.
	ErrInvalidSchema = errors.New("schema: invalid schema")

	// ErrUnknownAddress means a lookup asked for an address the registry does not hold.
	ErrUnknownAddress = errors.New("schema: unknown address")
)

// Registry is the immutable address -> field catalog.
// Built once by New, never mutated afterwards, so concurrent readers need no locking.
type Registry struct {
	fields map[Address]Field
	order  []Address // ascending
}

// New validates fields and freezes them into a Registry.
// Any violation aborts construction with ErrInvalidSchema.
func New(fields ...Field) (*Registry, error) {
	r := &Registry{
		fields: make(map[Address]Field, len(fields)),
		order:  make([]Address, 0, len(fields)),
	}

	for _, f := range fields {
		if err := validateField(f); err != nil {
			return nil, err
		}
		if prev, exists := r.fields[f.Address]; exists {
			return nil, fmt.Errorf(
				"%w: address %s defined twice (%q and %q)",
				ErrInvalidSchema, f.Address, prev.Name, f.Name,
			)
		}

		// Own the bit names; the caller's slice is not shared.
		if b, ok := f.Descriptor.(Bitfield); ok {
			f.Descriptor = NewBitfield(b.names...)
		}

		r.fields[f.Address] = f
		r.order = append(r.order, f.Address)
	}

	sort.Slice(r.order, func(i, j int) bool { return r.order[i] < r.order[j] })
	return r, nil
}

func validateField(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("%w: address %s: name required", ErrInvalidSchema, f.Address)
	}

	switch d := f.Descriptor.(type) {
	case Numeric:
		// the largest raw word must still scale to a finite reading
		if !(d.Multiplier > 0) || math.IsInf(d.Multiplier*math.MaxUint16, 0) {
			return fmt.Errorf(
				"%w: address %s (%q): multiplier must be > 0, got %v",
				ErrInvalidSchema, f.Address, f.Name, d.Multiplier,
			)
		}
	case Bitfield:
		if n := d.Width(); n != BitsNarrow && n != BitsWide {
			return fmt.Errorf(
				"%w: address %s (%q): bitfield needs %d or %d bit names, got %d",
				ErrInvalidSchema, f.Address, f.Name, BitsNarrow, BitsWide, n,
			)
		}
	case nil:
		return fmt.Errorf("%w: address %s (%q): descriptor required", ErrInvalidSchema, f.Address, f.Name)
	default:
		return fmt.Errorf("%w: address %s (%q): unsupported descriptor %T", ErrInvalidSchema, f.Address, f.Name, d)
	}

	return nil
}

// Lookup returns the field registered at addr.
func (r *Registry) Lookup(addr Address) (Field, error) {
	f, ok := r.fields[addr]
	if !ok {
		return Field{}, fmt.Errorf("%w: %s", ErrUnknownAddress, addr)
	}
	return f, nil
}

// Addresses returns every registered address in ascending order.
// The slice is a copy.
func (r *Registry) Addresses() []Address {
	return append([]Address(nil), r.order...)
}

// Fields returns every field in ascending address order.
func (r *Registry) Fields() []Field {
	out := make([]Field, 0, len(r.order))
	for _, a := range r.order {
		out = append(out, r.fields[a])
	}
	return out
}

// Len is the number of registered fields.
func (r *Registry) Len() int { return len(r.order) }
