package hubspot

import (
	"fmt"
	"strings"
)

// ObjectDescriptor describes one CRM object type exposed as tools.
type ObjectDescriptor struct {
	// Type is the plural API path segment, e.g. "contacts".
	Type string `yaml:"type"`

	// Name is the singular name used in tool names, e.g. "contact".
	Name string `yaml:"name"`

	// SearchProperty is searched when a caller does not name a property.
	SearchProperty string `yaml:"searchProperty"`

	// Updatable enables the update tool. Nil means true.
	Updatable *bool `yaml:"updatable,omitempty"`
}

// IsUpdatable reports whether an update tool is registered for the object.
func (d ObjectDescriptor) IsUpdatable() bool {
	return d.Updatable == nil || *d.Updatable
}

// Catalog is the ordered list of object types exposed by the server.
type Catalog []ObjectDescriptor

// DefaultCatalog returns the standard HubSpot CRM objects.
func DefaultCatalog() Catalog {
	return Catalog{
		{Type: "contacts", Name: "contact", SearchProperty: "email"},
		{Type: "companies", Name: "company", SearchProperty: "name"},
		{Type: "deals", Name: "deal", SearchProperty: "dealname"},
		{Type: "tickets", Name: "ticket", SearchProperty: "subject"},
		{Type: "products", Name: "product", SearchProperty: "name"},
		{Type: "line_items", Name: "line_item", SearchProperty: "name"},
		{Type: "quotes", Name: "quote", SearchProperty: "hs_title"},
	}
}

// Lookup returns the descriptor for an object type.
func (c Catalog) Lookup(objectType string) (ObjectDescriptor, bool) {
	for _, d := range c {
		if d.Type == objectType {
			return d, true
		}
	}
	return ObjectDescriptor{}, false
}

// Types returns the object types in catalog order.
func (c Catalog) Types() []string {
	types := make([]string, 0, len(c))
	for _, d := range c {
		types = append(types, d.Type)
	}
	return types
}

// Validate checks that the catalog is non-empty and that every entry has a
// unique type and name and a search property.
func (c Catalog) Validate() error {
	if len(c) == 0 {
		return fmt.Errorf("catalog must contain at least one object type")
	}

	var problems []string
	seenTypes := make(map[string]bool, len(c))
	seenNames := make(map[string]bool, len(c))
	for i, d := range c {
		if d.Type == "" {
			problems = append(problems, fmt.Sprintf("entry %d: type is required", i))
		} else if seenTypes[d.Type] {
			problems = append(problems, fmt.Sprintf("entry %d: duplicate type %q", i, d.Type))
		}
		if d.Name == "" {
			problems = append(problems, fmt.Sprintf("entry %d: name is required", i))
		} else if seenNames[d.Name] {
			problems = append(problems, fmt.Sprintf("entry %d: duplicate name %q", i, d.Name))
		}
		if d.SearchProperty == "" {
			problems = append(problems, fmt.Sprintf("entry %d: searchProperty is required", i))
		}
		seenTypes[d.Type] = true
		seenNames[d.Name] = true
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid catalog: %s", strings.Join(problems, "; "))
	}
	return nil
}
