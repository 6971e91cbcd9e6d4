package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/giantswarm/mcp-hubspot/internal/hubspot"
)

// CRMClient is the subset of the HubSpot client used by tool handlers.
type CRMClient interface {
	GetObject(ctx context.Context, objectType, id string, opts hubspot.GetOptions) (json.RawMessage, error)
	SearchObjects(ctx context.Context, objectType string, filters []hubspot.Filter, properties []string) (json.RawMessage, error)
	CreateObject(ctx context.Context, objectType string, properties *hubspot.Properties) (json.RawMessage, error)
	UpdateObject(ctx context.Context, objectType, id string, properties *hubspot.Properties) (json.RawMessage, error)
	AssociateObjects(ctx context.Context, a hubspot.Association) (json.RawMessage, error)
}

// invokeFunc performs the API call of a tool once its arguments are valid.
type invokeFunc func(ctx context.Context, client CRMClient, args map[string]any) (json.RawMessage, error)

// objectOperation is one row of the per-object tool table.
type objectOperation struct {
	name        func(d hubspot.ObjectDescriptor) string
	description func(d hubspot.ObjectDescriptor) string
	args        func(d hubspot.ObjectDescriptor) []argSpec
	enabled     func(d hubspot.ObjectDescriptor) bool
	invoke      func(d hubspot.ObjectDescriptor, operator hubspot.SearchOperator) invokeFunc
}

var propertiesListArg = argSpec{
	name:        "properties",
	kind:        argStringList,
	description: "Property names to include in the response",
}

// objectOperations lists the tools registered for every catalog entry.
var objectOperations = []objectOperation{
	{
		name: func(d hubspot.ObjectDescriptor) string { return "get_" + d.Name },
		description: func(d hubspot.ObjectDescriptor) string {
			return fmt.Sprintf("Get a HubSpot %s by ID", d.Name)
		},
		args: func(d hubspot.ObjectDescriptor) []argSpec {
			return []argSpec{
				{name: "id", kind: argString, required: true, description: fmt.Sprintf("ID of the %s", d.Name)},
				propertiesListArg,
				{name: "idProperty", kind: argString, description: "Unique property to look the object up by instead of the record ID"},
			}
		},
		invoke: func(d hubspot.ObjectDescriptor, _ hubspot.SearchOperator) invokeFunc {
			return func(ctx context.Context, client CRMClient, args map[string]any) (json.RawMessage, error) {
				return client.GetObject(ctx, d.Type, stringArg(args, "id"), hubspot.GetOptions{
					Properties: stringListArg(args, "properties"),
					IDProperty: stringArg(args, "idProperty"),
				})
			}
		},
	},
	{
		name: func(d hubspot.ObjectDescriptor) string { return "search_" + d.Type },
		description: func(d hubspot.ObjectDescriptor) string {
			return fmt.Sprintf("Search HubSpot %s (matches %s unless another property is given)", d.Type, d.SearchProperty)
		},
		args: func(d hubspot.ObjectDescriptor) []argSpec {
			return []argSpec{
				{name: "query", kind: argString, required: true, description: "Value to search for"},
				{name: "property", kind: argString, description: fmt.Sprintf("Property to search (default: %s)", d.SearchProperty)},
				propertiesListArg,
			}
		},
		invoke: func(d hubspot.ObjectDescriptor, operator hubspot.SearchOperator) invokeFunc {
			return func(ctx context.Context, client CRMClient, args map[string]any) (json.RawMessage, error) {
				property := stringArg(args, "property")
				if property == "" {
					property = d.SearchProperty
				}
				filters := []hubspot.Filter{{
					PropertyName: property,
					Operator:     operator,
					Value:        stringArg(args, "query"),
				}}
				return client.SearchObjects(ctx, d.Type, filters, stringListArg(args, "properties"))
			}
		},
	},
	{
		name: func(d hubspot.ObjectDescriptor) string { return "create_" + d.Name },
		description: func(d hubspot.ObjectDescriptor) string {
			return fmt.Sprintf("Create a HubSpot %s", d.Name)
		},
		args: func(d hubspot.ObjectDescriptor) []argSpec {
			return []argSpec{
				{name: "properties", kind: argObject, required: true, description: fmt.Sprintf("Properties of the new %s", d.Name)},
			}
		},
		invoke: func(d hubspot.ObjectDescriptor, _ hubspot.SearchOperator) invokeFunc {
			return func(ctx context.Context, client CRMClient, args map[string]any) (json.RawMessage, error) {
				props, err := propertiesArg(args, "properties")
				if err != nil {
					return nil, err
				}
				return client.CreateObject(ctx, d.Type, props)
			}
		},
	},
	{
		name: func(d hubspot.ObjectDescriptor) string { return "update_" + d.Name },
		description: func(d hubspot.ObjectDescriptor) string {
			return fmt.Sprintf("Update properties of an existing HubSpot %s", d.Name)
		},
		args: func(d hubspot.ObjectDescriptor) []argSpec {
			return []argSpec{
				{name: "id", kind: argString, required: true, description: fmt.Sprintf("ID of the %s", d.Name)},
				{name: "properties", kind: argObject, required: true, description: "Properties to change"},
			}
		},
		enabled: hubspot.ObjectDescriptor.IsUpdatable,
		invoke: func(d hubspot.ObjectDescriptor, _ hubspot.SearchOperator) invokeFunc {
			return func(ctx context.Context, client CRMClient, args map[string]any) (json.RawMessage, error) {
				props, err := propertiesArg(args, "properties")
				if err != nil {
					return nil, err
				}
				return client.UpdateObject(ctx, d.Type, stringArg(args, "id"), props)
			}
		},
	},
}

const associateToolName = "associate_objects"

var associateArgs = []argSpec{
	{name: "fromObjectType", kind: argString, required: true, description: "Object type of the source, e.g. contacts"},
	{name: "fromObjectId", kind: argString, required: true, description: "ID of the source object"},
	{name: "toObjectType", kind: argString, required: true, description: "Object type of the target, e.g. companies"},
	{name: "toObjectId", kind: argString, required: true, description: "ID of the target object"},
	{name: "associationTypeId", kind: argInteger, required: true, description: "Numeric association type ID"},
	{name: "associationCategory", kind: argString, description: "Association category (default: HUBSPOT_DEFINED)"},
}

func invokeAssociate(ctx context.Context, client CRMClient, args map[string]any) (json.RawMessage, error) {
	return client.AssociateObjects(ctx, hubspot.Association{
		FromObjectType: stringArg(args, "fromObjectType"),
		FromObjectID:   stringArg(args, "fromObjectId"),
		ToObjectType:   stringArg(args, "toObjectType"),
		ToObjectID:     stringArg(args, "toObjectId"),
		Category:       stringArg(args, "associationCategory"),
		TypeID:         intArg(args, "associationTypeId"),
	})
}
