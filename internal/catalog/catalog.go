// Package catalog holds the static registry of expected structural
// attributes per parse case. It is seeded once at startup and read-only
// afterwards, so lookups need no locking.
package catalog

import (
	"fmt"
	"sort"

	"parsegate/internal/domain"
)

// Summary describes the attribute makeup of one parse case.
type Summary struct {
	ParseCase          string   `json:"parse_case"`
	TotalAttributes    int      `json:"total_attributes"`
	RequiredAttributes int      `json:"required_attributes"`
	OptionalAttributes int      `json:"optional_attributes"`
	AttributeNames     []string `json:"attribute_names"`
	RequiredNames      []string `json:"required_attribute_names"`
}

// Catalog is an immutable lookup of parse cases by name.
type Catalog struct {
	cases   map[string]domain.ParseCase
	ordered []string
}

// New builds a Catalog from seeded parse cases. Inactive cases are dropped;
// duplicate names are an error. Cases are ordered by detection priority
// (ascending, name as tie-break), which detectors use when several
// candidates fit.
func New(cases []domain.ParseCase) (*Catalog, error) {
	c := &Catalog{cases: make(map[string]domain.ParseCase, len(cases))}
	for _, pc := range cases {
		if !pc.IsActive {
			continue
		}
		if _, dup := c.cases[pc.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate parse case %q", pc.Name)
		}
		attrs := append([]domain.AttributeDefinition(nil), pc.Attributes...)
		sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Position < attrs[j].Position })
		pc.Attributes = attrs
		c.cases[pc.Name] = pc
		c.ordered = append(c.ordered, pc.Name)
	}
	sort.SliceStable(c.ordered, func(i, j int) bool {
		a, b := c.cases[c.ordered[i]], c.cases[c.ordered[j]]
		if a.DetectionPriority != b.DetectionPriority {
			return a.DetectionPriority < b.DetectionPriority
		}
		return a.Name < b.Name
	})
	return c, nil
}

// ExpectedAttributes returns the ordered attribute definitions for a parse
// case, or ErrUnknownParseCase.
func (c *Catalog) ExpectedAttributes(parseCase string) ([]domain.AttributeDefinition, error) {
	pc, ok := c.cases[parseCase]
	if !ok {
		return nil, fmt.Errorf("catalog %q: %w", parseCase, domain.ErrUnknownParseCase)
	}
	return pc.Attributes, nil
}

// ParseCase returns the full definition of a parse case, or ErrUnknownParseCase.
func (c *Catalog) ParseCase(name string) (*domain.ParseCase, error) {
	pc, ok := c.cases[name]
	if !ok {
		return nil, fmt.Errorf("catalog %q: %w", name, domain.ErrUnknownParseCase)
	}
	return &pc, nil
}

// ListParseCases returns all registered cases in detection-priority order.
func (c *Catalog) ListParseCases() []domain.ParseCase {
	out := make([]domain.ParseCase, 0, len(c.ordered))
	for _, name := range c.ordered {
		out = append(out, c.cases[name])
	}
	return out
}

// Validate reports whether a parse case is registered.
func (c *Catalog) Validate(parseCase string) bool {
	_, ok := c.cases[parseCase]
	return ok
}

// Summary returns attribute counts and names for a parse case.
func (c *Catalog) Summary(parseCase string) (*Summary, error) {
	pc, ok := c.cases[parseCase]
	if !ok {
		return nil, fmt.Errorf("catalog %q: %w", parseCase, domain.ErrUnknownParseCase)
	}
	s := &Summary{ParseCase: pc.Name, TotalAttributes: len(pc.Attributes)}
	for _, a := range pc.Attributes {
		s.AttributeNames = append(s.AttributeNames, a.Name)
		if a.Required {
			s.RequiredAttributes++
			s.RequiredNames = append(s.RequiredNames, a.Name)
		}
	}
	s.OptionalAttributes = s.TotalAttributes - s.RequiredAttributes
	return s, nil
}
