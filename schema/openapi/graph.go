package openapi

import (
	"encoding/json"
	"fmt"
	"sort"

	configtypes "github.com/goliatone/go-configtypes"
)

// schemaNode is one OpenAPI schema object prior to rendering.
type schemaNode struct {
	Type                 string
	Description          string
	Ref                  string
	Properties           map[string]*schemaNode
	Required             []string
	Items                *schemaNode
	Enum                 []any
	Default              any
	Nullable             bool
	OneOf                []*schemaNode
	AdditionalProperties *bool
	MinProperties        *int
	MaxProperties        *int
	extensions           map[string]any
}

func refNode(ref string) *schemaNode {
	return &schemaNode{Ref: ref}
}

func (n *schemaNode) baseMap() map[string]any {
	result := map[string]any{}
	if n.Type != "" {
		result["type"] = n.Type
	}
	if n.Description != "" {
		result["description"] = n.Description
	}
	if n.Default != nil {
		result["default"] = n.Default
	}
	if len(n.Enum) > 0 {
		result["enum"] = n.Enum
	}
	if n.Nullable {
		result["nullable"] = true
	}
	if n.AdditionalProperties != nil {
		result["additionalProperties"] = *n.AdditionalProperties
	}
	if n.MinProperties != nil {
		result["minProperties"] = *n.MinProperties
	}
	if n.MaxProperties != nil {
		result["maxProperties"] = *n.MaxProperties
	}
	return result
}

// inlineOpenAPI renders the node. A $ref with sibling keywords is wrapped in
// allOf, since OpenAPI 3.0 ignores siblings of $ref.
func (n *schemaNode) inlineOpenAPI() map[string]any {
	if n.Ref != "" {
		ref := map[string]any{"$ref": n.Ref}
		siblings := n.baseMap()
		for key, value := range n.extensions {
			siblings[key] = value
		}
		if len(siblings) == 0 {
			return ref
		}
		siblings["allOf"] = []any{ref}
		return siblings
	}

	result := n.baseMap()

	if n.Type == "object" {
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = child.inlineOpenAPI()
		}
		result["properties"] = props
	}

	if len(n.Required) > 0 {
		names := append([]string{}, n.Required...)
		sort.Strings(names)
		result["required"] = names
	}

	if n.Items != nil {
		result["items"] = n.Items.inlineOpenAPI()
	}

	if len(n.OneOf) > 0 {
		variants := make([]any, 0, len(n.OneOf))
		for _, variant := range n.OneOf {
			variants = append(variants, variant.inlineOpenAPI())
		}
		result["oneOf"] = variants
	}

	for key, value := range n.extensions {
		result[key] = value
	}

	return result
}

func (n *schemaNode) setExtension(key string, value any) {
	if n.extensions == nil {
		n.extensions = map[string]any{}
	}
	n.extensions[key] = value
}

// graphBuilder translates a descriptor graph into schema nodes. Composite and
// enum types become named components and are referenced by $ref, so cyclic
// schemas terminate.
type graphBuilder struct {
	registry   *componentRegistry
	extensions bool
}

func newGraphBuilder(registry *componentRegistry, extensions bool) *graphBuilder {
	return &graphBuilder{registry: registry, extensions: extensions}
}

func (b *graphBuilder) extend(node *schemaNode, key string, value any) {
	if b.extensions {
		node.setExtension(key, value)
	}
}

func (b *graphBuilder) node(typ configtypes.ConfigType) (*schemaNode, error) {
	switch t := typ.(type) {
	case *configtypes.CompositeConfigType, *configtypes.EnumConfigType:
		return b.component(t)
	case *configtypes.RegularConfigType:
		return b.scalarNode(t), nil
	case *configtypes.ArrayConfigType:
		inner, err := b.resolve(t.OfType())
		if err != nil {
			return nil, err
		}
		return &schemaNode{Type: "array", Items: inner}, nil
	case *configtypes.NullableConfigType:
		inner, err := b.resolve(t.OfType())
		if err != nil {
			return nil, err
		}
		nullable := *inner
		nullable.Nullable = true
		return &nullable, nil
	case *configtypes.ScalarUnionConfigType:
		scalar, err := b.resolve(t.ScalarType())
		if err != nil {
			return nil, err
		}
		nonScalar, err := b.resolve(t.NonScalarType())
		if err != nil {
			return nil, err
		}
		return &schemaNode{OneOf: []*schemaNode{scalar, nonScalar}}, nil
	case nil:
		return nil, fmt.Errorf("openapi: config type cannot be nil")
	default:
		return nil, fmt.Errorf("openapi: unsupported config type %T", typ)
	}
}

func (b *graphBuilder) resolve(typ configtypes.ConfigType, err error) (*schemaNode, error) {
	if err != nil {
		return nil, err
	}
	return b.node(typ)
}

func (b *graphBuilder) component(typ configtypes.ConfigType) (*schemaNode, error) {
	ref, fresh := b.registry.reserve(typ.Key())
	if fresh {
		if _, err := b.define(typ); err != nil {
			return nil, err
		}
	}
	return refNode(ref), nil
}

// define builds typ's own schema and stores it as the component reserved for
// its key.
func (b *graphBuilder) define(typ configtypes.ConfigType) (*schemaNode, error) {
	var node *schemaNode
	var err error
	switch t := typ.(type) {
	case *configtypes.CompositeConfigType:
		node, err = b.composite(t)
	case *configtypes.EnumConfigType:
		node = b.enumNode(t)
	default:
		node, err = b.node(typ)
	}
	if err != nil {
		return nil, err
	}
	b.extend(node, "x-config-key", typ.Key())
	b.extend(node, "x-config-kind", string(typ.Kind()))
	b.registry.define(typ.Key(), node)
	return node, nil
}

func (b *graphBuilder) composite(t *configtypes.CompositeConfigType) (*schemaNode, error) {
	node := &schemaNode{
		Type:        "object",
		Description: t.Description(),
		Properties:  map[string]*schemaNode{},
	}
	for _, field := range t.Fields() {
		fieldType, err := field.ConfigType()
		prop, err := b.resolve(fieldType, err)
		if err != nil {
			return nil, fmt.Errorf("openapi: field %s.%s: %w", t.Key(), field.Name(), err)
		}
		if desc := field.Description(); desc != "" {
			prop.Description = desc
		}
		if value, ok := field.DefaultValue(); ok {
			b.applyDefault(prop, fieldType, value)
		}
		node.Properties[field.Name()] = prop
		if !field.IsOptional() {
			node.Required = append(node.Required, field.Name())
		}
	}

	switch t.Kind() {
	case configtypes.KindPermissiveShape:
		node.AdditionalProperties = boolPtr(true)
	case configtypes.KindSelector:
		node.AdditionalProperties = boolPtr(false)
		node.MinProperties = intPtr(1)
		node.MaxProperties = intPtr(1)
	default:
		node.AdditionalProperties = boolPtr(false)
	}
	return node, nil
}

// applyDefault sets prop's default from the string form a snapshot carries.
// String-valued types keep the text. Other types take it as JSON; text that
// does not decode is kept under x-config-default instead of a mistyped default.
func (b *graphBuilder) applyDefault(prop *schemaNode, typ configtypes.ConfigType, value string) {
	if stringValued(typ) {
		prop.Default = value
		return
	}
	var decoded any
	if err := json.Unmarshal([]byte(value), &decoded); err != nil || decoded == nil {
		if isAny(typ) {
			prop.Default = value
			return
		}
		b.extend(prop, "x-config-default", value)
		return
	}
	prop.Default = decoded
}

func stringValued(typ configtypes.ConfigType) bool {
	switch t := typ.(type) {
	case *configtypes.EnumConfigType:
		return true
	case *configtypes.RegularConfigType:
		if t.Kind() == configtypes.KindAny {
			return false
		}
		_, typed := scalarTypes[t.GivenName()]
		return !typed || t.GivenName() == "String"
	case *configtypes.NullableConfigType:
		inner, err := t.OfType()
		return err == nil && stringValued(inner)
	default:
		return false
	}
}

func isAny(typ configtypes.ConfigType) bool {
	regular, ok := typ.(*configtypes.RegularConfigType)
	return ok && regular.Kind() == configtypes.KindAny
}

func (b *graphBuilder) enumNode(t *configtypes.EnumConfigType) *schemaNode {
	node := &schemaNode{Type: "string", Description: t.Description()}
	descriptions := map[string]any{}
	for _, value := range t.Values() {
		node.Enum = append(node.Enum, value.Value)
		if value.Description != "" {
			descriptions[value.Value] = value.Description
		}
	}
	if len(descriptions) > 0 {
		b.extend(node, "x-enum-descriptions", descriptions)
	}
	return node
}

var scalarTypes = map[string]string{
	"String": "string",
	"Int":    "integer",
	"Float":  "number",
	"Bool":   "boolean",
}

func (b *graphBuilder) scalarNode(t *configtypes.RegularConfigType) *schemaNode {
	if t.Kind() == configtypes.KindAny {
		return &schemaNode{}
	}
	if typ, ok := scalarTypes[t.GivenName()]; ok {
		return &schemaNode{Type: typ}
	}
	node := &schemaNode{Type: "string"}
	b.extend(node, "x-config-scalar", t.GivenName())
	return node
}

func boolPtr(v bool) *bool {
	return &v
}

func intPtr(v int) *int {
	return &v
}
