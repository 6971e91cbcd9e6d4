package hubspot

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// ValueKind identifies which variant a PropertyValue holds.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
)

// String makes ValueKind satisfy the fmt.Stringer interface.
func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// PropertyValue is a single CRM property value: a string, number, boolean
// or null. The zero value is null.
type PropertyValue struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
}

// StringValue returns a string property value.
func StringValue(s string) PropertyValue {
	return PropertyValue{kind: KindString, str: s}
}

// NumberValue returns a numeric property value.
func NumberValue(n float64) PropertyValue {
	return PropertyValue{kind: KindNumber, num: n}
}

// BoolValue returns a boolean property value.
func BoolValue(b bool) PropertyValue {
	return PropertyValue{kind: KindBool, b: b}
}

// NullValue returns the null property value.
func NullValue() PropertyValue {
	return PropertyValue{}
}

// Kind reports which variant v holds.
func (v PropertyValue) Kind() ValueKind {
	return v.kind
}

// String renders the value the way HubSpot stores it.
func (v PropertyValue) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return ""
	}
}

// MarshalJSON implements json.Marshaler.
func (v PropertyValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindString:
		return json.Marshal(v.str)
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil, fmt.Errorf("unsupported number value %v", v.num)
		}
		return json.Marshal(v.num)
	case KindBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler. Objects and arrays are rejected.
func (v *PropertyValue) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := PropertyValueFrom(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// PropertyValueFrom converts a decoded JSON value into a PropertyValue.
func PropertyValueFrom(raw interface{}) (PropertyValue, error) {
	switch val := raw.(type) {
	case nil:
		return NullValue(), nil
	case string:
		return StringValue(val), nil
	case bool:
		return BoolValue(val), nil
	case float64:
		return NumberValue(val), nil
	case float32:
		return NumberValue(float64(val)), nil
	case int:
		return NumberValue(float64(val)), nil
	case int64:
		return NumberValue(float64(val)), nil
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return PropertyValue{}, fmt.Errorf("invalid number %q: %w", val.String(), err)
		}
		return NumberValue(f), nil
	default:
		return PropertyValue{}, fmt.Errorf("unsupported property value of type %T (expected string, number, boolean or null)", raw)
	}
}

// Properties is an ordered mapping of CRM property names to values.
// Key order is preserved through JSON encoding and decoding.
type Properties struct {
	m *orderedmap.OrderedMap[string, PropertyValue]
}

// NewProperties returns an empty property map.
func NewProperties() *Properties {
	return &Properties{m: orderedmap.New[string, PropertyValue]()}
}

func (p *Properties) ensure() {
	if p.m == nil {
		p.m = orderedmap.New[string, PropertyValue]()
	}
}

// Set stores value under key, keeping the original position of existing keys.
func (p *Properties) Set(key string, value PropertyValue) *Properties {
	p.ensure()
	p.m.Set(key, value)
	return p
}

// Get returns the value stored under key.
func (p *Properties) Get(key string) (PropertyValue, bool) {
	if p == nil || p.m == nil {
		return PropertyValue{}, false
	}
	return p.m.Get(key)
}

// Len returns the number of properties.
func (p *Properties) Len() int {
	if p == nil || p.m == nil {
		return 0
	}
	return p.m.Len()
}

// Keys returns the property names in insertion order.
func (p *Properties) Keys() []string {
	if p == nil || p.m == nil {
		return nil
	}
	keys := make([]string, 0, p.m.Len())
	for pair := p.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// MarshalJSON implements json.Marshaler.
func (p *Properties) MarshalJSON() ([]byte, error) {
	if p == nil || p.m == nil {
		return []byte("{}"), nil
	}
	return p.m.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Properties) UnmarshalJSON(data []byte) error {
	p.m = orderedmap.New[string, PropertyValue]()
	return p.m.UnmarshalJSON(data)
}

// PropertiesFromMap converts a decoded JSON object into Properties.
// Keys are inserted in sorted order since Go maps carry no order. Every key
// whose value is not a string, number, boolean or null is reported.
func PropertiesFromMap(in map[string]interface{}) (*Properties, error) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	props := NewProperties()
	var invalid []string
	for _, k := range keys {
		v, err := PropertyValueFrom(in[k])
		if err != nil {
			invalid = append(invalid, k)
			continue
		}
		props.Set(k, v)
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("unsupported values for properties: %s", strings.Join(invalid, ", "))
	}
	return props, nil
}

// SearchOperator is the comparison used by search filters.
type SearchOperator string

const (
	// OperatorEQ matches the property value exactly.
	OperatorEQ SearchOperator = "EQ"
	// OperatorContainsToken matches any token of the property value.
	OperatorContainsToken SearchOperator = "CONTAINS_TOKEN"
)

// ParseSearchOperator validates a configured search operator.
func ParseSearchOperator(s string) (SearchOperator, error) {
	switch op := SearchOperator(strings.ToUpper(strings.TrimSpace(s))); op {
	case OperatorEQ, OperatorContainsToken:
		return op, nil
	case "":
		return OperatorContainsToken, nil
	default:
		return "", fmt.Errorf("unsupported search operator %q (expected %s or %s)", s, OperatorEQ, OperatorContainsToken)
	}
}

// Filter is a single condition inside a search filter group.
type Filter struct {
	PropertyName string         `json:"propertyName"`
	Operator     SearchOperator `json:"operator"`
	Value        string         `json:"value,omitempty"`
}

// FilterGroup combines filters with a logical AND.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

// SearchRequest is the body of a CRM search call.
type SearchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Properties   []string      `json:"properties,omitempty"`
}

// GetOptions are the optional parameters of GetObject.
type GetOptions struct {
	// Properties limits the returned properties.
	Properties []string

	// IDProperty names a unique property to look the object up by instead
	// of the internal record ID.
	IDProperty string
}

// DefaultAssociationCategory is used when an association has no category.
const DefaultAssociationCategory = "HUBSPOT_DEFINED"

// Association links two CRM objects.
type Association struct {
	FromObjectType string
	FromObjectID   string
	ToObjectType   string
	ToObjectID     string
	Category       string
	TypeID         int
}

type objectRef struct {
	ID string `json:"id"`
}

type associationSpec struct {
	AssociationCategory string `json:"associationCategory"`
	AssociationTypeID   int    `json:"associationTypeId"`
}

type associationInput struct {
	From  objectRef         `json:"from"`
	To    objectRef         `json:"to"`
	Types []associationSpec `json:"types"`
}

type associationBatchRequest struct {
	Inputs []associationInput `json:"inputs"`
}

type propertiesEnvelope struct {
	Properties *Properties `json:"properties"`
}

// newPropertiesEnvelope wraps properties, encoding nil as an empty object.
func newPropertiesEnvelope(properties *Properties) propertiesEnvelope {
	if properties == nil {
		properties = NewProperties()
	}
	return propertiesEnvelope{Properties: properties}
}
