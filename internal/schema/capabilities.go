package schema

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DescriptorVersion is bumped whenever the set of roles changes.
const DescriptorVersion = 1

var ErrUnresolved = errors.New("schema unresolved")

// Generation is the schema lineage detected from primary key naming.
type Generation string

const (
	GenerationLegacy     Generation = "legacy"     // id
	GenerationNormalized Generation = "normalized" // <entity>_id
	GenerationMixed      Generation = "mixed"
	GenerationUnknown    Generation = "unknown"
)

// Capabilities is the schema descriptor resolved once at startup and shared by
// every component that builds queries.
type Capabilities struct {
	Version    int        `json:"version" yaml:"version"`
	Generation Generation `json:"generation" yaml:"generation"`
	Catalog    Map        `json:"catalog" yaml:"catalog"`
	Sales      Map        `json:"sales" yaml:"sales"`
}

// LoadCapabilities resolves both families. In strict mode a table that yields
// no columns is reported as ErrUnresolved instead of silently using defaults.
func LoadCapabilities(ctx context.Context, r *Resolver, strict bool) (*Capabilities, error) {
	c := &Capabilities{
		Version: DescriptorVersion,
		Catalog: r.Resolve(ctx, FamilyCatalog),
		Sales:   r.Resolve(ctx, FamilySales),
	}
	c.Generation = detectGeneration(c.Catalog, c.Sales)

	if strict {
		missing := append(append([]string(nil), c.Catalog.Missing...), c.Sales.Missing...)
		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: no columns for %s", ErrUnresolved, strings.Join(dedupe(missing), ", "))
		}
	}
	return c, nil
}

func (c *Capabilities) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

func detectGeneration(catalog, sales Map) Generation {
	if len(catalog.Missing) > 0 || len(sales.Missing) > 0 {
		return GenerationUnknown
	}
	pks := []string{
		catalog.Get(ProductID),
		catalog.Get(CategoryID),
		sales.Get(SaleID),
		sales.Get(CustomerPK),
	}
	legacy, normalized := 0, 0
	for _, pk := range pks {
		if pk == "id" {
			legacy++
		} else {
			normalized++
		}
	}
	switch {
	case legacy == len(pks):
		return GenerationLegacy
	case normalized == len(pks):
		return GenerationNormalized
	default:
		return GenerationMixed
	}
}

// Overrides pins roles to columns for deployments the resolver cannot guess.
type Overrides struct {
	Version int             `yaml:"version"`
	Catalog map[Role]string `yaml:"catalog"`
	Sales   map[Role]string `yaml:"sales"`
}

func LoadOverrides(path string) (Overrides, error) {
	var o Overrides
	if path == "" {
		return o, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return o, fmt.Errorf("read schema overrides: %w", err)
	}
	return ParseOverrides(data)
}

func ParseOverrides(data []byte) (Overrides, error) {
	var o Overrides
	if err := yaml.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse schema overrides: %w", err)
	}
	if o.Version != 0 && o.Version != DescriptorVersion {
		return o, fmt.Errorf("schema overrides version %d, want %d", o.Version, DescriptorVersion)
	}
	if err := checkRoles(FamilyCatalog, o.Catalog); err != nil {
		return o, err
	}
	if err := checkRoles(FamilySales, o.Sales); err != nil {
		return o, err
	}
	return o, nil
}

func checkRoles(f Family, pinned map[Role]string) error {
	known := map[Role]bool{}
	for _, r := range Roles(f) {
		known[r] = true
	}
	for r, col := range pinned {
		if !known[r] {
			return fmt.Errorf("schema overrides: unknown %s role %q", f, r)
		}
		if strings.TrimSpace(col) == "" {
			return fmt.Errorf("schema overrides: empty column for %s role %q", f, r)
		}
	}
	return nil
}

func (o Overrides) apply(m *Map) {
	var pinned map[Role]string
	switch m.Family {
	case FamilyCatalog:
		pinned = o.Catalog
	case FamilySales:
		pinned = o.Sales
	}
	if len(pinned) == 0 {
		return
	}
	for r, col := range pinned {
		m.Columns[r] = col
	}
	kept := m.Defaulted[:0]
	for _, r := range m.Defaulted {
		if _, ok := pinned[r]; !ok {
			kept = append(kept, r)
		}
	}
	m.Defaulted = kept
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
