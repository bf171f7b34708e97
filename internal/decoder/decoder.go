// internal/decoder/decoder.go
package decoder

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tamzrod/register-poller/internal/schema"
)

// Value is the decoded representation of one register: ScaledNumber or FlagList.
type Value interface {
	fmt.Stringer
	value()
}

// ScaledNumber is raw * multiplier. No rounding is applied.
type ScaledNumber float64

func (ScaledNumber) value() {}

func (n ScaledNumber) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// Flag is one named bit of a bitfield register.
type Flag struct {
	Name string `json:"name"`
	Set  bool   `json:"set"`
}

// FlagList holds the named bits of a register in bit order.
type FlagList []Flag

func (FlagList) value() {}

// String renders "name: True, name: False", the layout the CSV output uses.
func (l FlagList) String() string {
	parts := make([]string, 0, len(l))
	for _, f := range l {
		state := "False"
		if f.Set {
			state = "True"
		}
		parts = append(parts, f.Name+": "+state)
	}
	return strings.Join(parts, ", ")
}

// IsSet reports whether the named flag is present and set.
func (l FlagList) IsSet(name string) bool {
	for _, f := range l {
		if f.Name == name {
			return f.Set
		}
	}
	return false
}

// DecodedField is one register interpreted through its schema field.
type DecodedField struct {
	Address schema.Address `json:"address"`
	Name    string         `json:"name"`
	Value   Value          `json:"value"`
	Unit    string         `json:"unit"`
}

// Decode interprets word through field's descriptor.
// Pure and total: every 16-bit word decodes for a validated field.
func Decode(field schema.Field, word uint16) DecodedField {
	out := DecodedField{
		Address: field.Address,
		Name:    field.Name,
		Unit:    field.Unit(),
	}

	switch d := field.Descriptor.(type) {
	case schema.Numeric:
		out.Value = ScaledNumber(float64(word) * d.Multiplier)
	case schema.Bitfield:
		out.Value = decodeBits(d, word)
	default:
		// unreachable for fields that passed schema.New
		panic(fmt.Sprintf("decoder: unsupported descriptor %T at %s", d, field.Address))
	}

	return out
}

func decodeBits(b schema.Bitfield, word uint16) FlagList {
	flags := make(FlagList, 0, b.Width())
	for i := 0; i < b.Width(); i++ {
		name := b.BitName(i)
		if name == "" {
			continue
		}
		flags = append(flags, Flag{Name: name, Set: (word>>uint(i))&1 == 1})
	}
	return flags
}

// DecodeAll decodes every field of reg from values, in ascending address order.
// A registry address missing from values is an internal error of the caller.
func DecodeAll(reg *schema.Registry, values map[schema.Address]uint16) ([]DecodedField, error) {
	out := make([]DecodedField, 0, reg.Len())
	for _, f := range reg.Fields() {
		word, ok := values[f.Address]
		if !ok {
			return nil, fmt.Errorf("decoder: no raw word for %s (%q)", f.Address, f.Name)
		}
		out = append(out, Decode(f, word))
	}
	return out, nil
}
