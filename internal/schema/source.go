// internal/schema/source.go
package schema

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Entry is one row of the static schema table as written in a schema file.
type Entry struct {
	Address    uint16   `yaml:"address" toml:"address"`
	Name       string   `yaml:"name" toml:"name"`
	Kind       string   `yaml:"kind" toml:"kind"`
	Multiplier *float64 `yaml:"multiplier,omitempty" toml:"multiplier,omitempty"`
	Unit       string   `yaml:"unit,omitempty" toml:"unit,omitempty"`
	Bits       []string `yaml:"bits,omitempty" toml:"bits,omitempty"`
}

// Source is the on-disk layout of a schema file.
type Source struct {
	Registers []Entry `yaml:"registers" toml:"registers"`
}

// Format selects the schema file decoder.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

//go:embed heatpump.yaml
var defaultSchema []byte

// Default returns the built-in heat pump register map.
func Default() (*Registry, error) {
	return Parse(defaultSchema, FormatYAML)
}

// Load reads a schema file. The format follows the file extension
// (.yaml, .yml or .toml).
func Load(path string) (*Registry, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	reg, err := Parse(b, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return reg, nil
}

func formatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("schema: unsupported file extension %q", filepath.Ext(path))
	}
}

// Parse decodes a schema document and builds the Registry from it.
func Parse(data []byte, format Format) (*Registry, error) {
	var src Source

	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&src); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
	case FormatTOML:
		md, err := toml.Decode(string(data), &src)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: unknown keys %v", ErrInvalidSchema, undecoded)
		}
	default:
		return nil, fmt.Errorf("schema: unsupported format %q", format)
	}

	return Build(src.Registers)
}

// Build converts schema rows into fields and constructs the Registry.
// Numeric rows without a multiplier get 1.0.
func Build(entries []Entry) (*Registry, error) {
	fields := make([]Field, 0, len(entries))

	for _, e := range entries {
		addr := Address(e.Address)

		switch strings.ToLower(e.Kind) {
		case "value", "numeric":
			if len(e.Bits) > 0 {
				return nil, fmt.Errorf("%w: address %s (%q): bits given for numeric field", ErrInvalidSchema, addr, e.Name)
			}
			mult := 1.0
			if e.Multiplier != nil {
				mult = *e.Multiplier
			}
			fields = append(fields, Field{
				Address:    addr,
				Name:       e.Name,
				Descriptor: Numeric{Unit: e.Unit, Multiplier: mult},
			})

		case "bits", "bitfield":
			if e.Multiplier != nil || e.Unit != "" {
				return nil, fmt.Errorf("%w: address %s (%q): multiplier/unit given for bitfield", ErrInvalidSchema, addr, e.Name)
			}
			fields = append(fields, Field{
				Address:    addr,
				Name:       e.Name,
				Descriptor: NewBitfield(e.Bits...),
			})

		default:
			return nil, fmt.Errorf("%w: address %s (%q): unknown kind %q", ErrInvalidSchema, addr, e.Name, e.Kind)
		}
	}

	return New(fields...)
}

// Entries converts a Registry back into schema rows, in address order.
func Entries(r *Registry) []Entry {
	out := make([]Entry, 0, r.Len())
	for _, f := range r.Fields() {
		e := Entry{Address: uint16(f.Address), Name: f.Name}
		switch d := f.Descriptor.(type) {
		case Numeric:
			m := d.Multiplier
			e.Kind = "value"
			e.Multiplier = &m
			e.Unit = d.Unit
		case Bitfield:
			e.Kind = "bits"
			e.Bits = d.Names()
		}
		out = append(out, e)
	}
	return out
}
