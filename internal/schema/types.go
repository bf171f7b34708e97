// internal/schema/types.go
package schema

import "fmt"

// Address identifies one 16-bit holding register.
type Address uint16

func (a Address) String() string {
	return fmt.Sprintf("0x%04X", uint16(a))
}

// Register widths a bitfield may describe.
const (
	BitsNarrow = 8
	BitsWide   = 16
)

// Descriptor is the closed set of ways a raw register word is interpreted.
// Only Numeric and Bitfield implement it.
type Descriptor interface {
	Kind() Kind
	descriptor()
}

// Kind tags a Descriptor.
type Kind uint8

const (
	KindNumeric Kind = iota + 1
	KindBitfield
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindBitfield:
		return "bitfield"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Numeric scales the raw word by Multiplier into a measurement in Unit.
// Unit may be empty (unitless).
type Numeric struct {
	Unit       string
	Multiplier float64
}

func (Numeric) Kind() Kind { return KindNumeric }
func (Numeric) descriptor() {}

// Bitfield reads each bit of the raw word as an independent flag.
// Bit i (0 = least significant) is named by position i; empty names are unused bits.
type Bitfield struct {
	names []string
}

// NewBitfield copies names so the caller cannot alter the descriptor later.
func NewBitfield(names ...string) Bitfield {
	return Bitfield{names: append([]string(nil), names...)}
}

func (Bitfield) Kind() Kind { return KindBitfield }
func (Bitfield) descriptor() {}

// Width is the number of bit positions described (8 or 16 once validated).
func (b Bitfield) Width() int { return len(b.names) }

// BitName returns the name of bit i, or "" for unused or out-of-range bits.
func (b Bitfield) BitName(i int) string {
	if i < 0 || i >= len(b.names) {
		return ""
	}
	return b.names[i]
}

// Names returns a copy of the bit names in bit order.
func (b Bitfield) Names() []string {
	return append([]string(nil), b.names...)
}

// Field is one registry entry: a named register and its interpretation.
type Field struct {
	Address    Address
	Name       string
	Descriptor Descriptor
}

// Unit is the descriptor's unit; bitfields are always unitless.
func (f Field) Unit() string {
	if n, ok := f.Descriptor.(Numeric); ok {
		return n.Unit
	}
	return ""
}
