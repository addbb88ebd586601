package openapi

import (
	"fmt"
	"regexp"
)

// componentRegistry assigns one component name per config type key.
type componentRegistry struct {
	baseName  func(key string) string
	names     map[string]string
	schemas   map[string]*schemaNode
	usedNames map[string]struct{}
}

func newComponentRegistry(baseName func(key string) string) *componentRegistry {
	if baseName == nil {
		baseName = func(key string) string { return key }
	}
	return &componentRegistry{
		baseName:  baseName,
		names:     map[string]string{},
		schemas:   map[string]*schemaNode{},
		usedNames: map[string]struct{}{},
	}
}

// reserve returns the $ref for key. fresh is true the first time a key is
// seen; the caller must then define its schema. References handed out before
// define completes are what make recursive types terminate.
func (r *componentRegistry) reserve(key string) (ref string, fresh bool) {
	if name, ok := r.names[key]; ok {
		return componentRef(name), false
	}
	name := r.uniqueName(r.baseName(key))
	r.names[key] = name
	return componentRef(name), true
}

// forceName publishes key under a caller-chosen name.
func (r *componentRegistry) forceName(key, name string) string {
	unique := r.uniqueName(name)
	r.names[key] = unique
	return componentRef(unique)
}

func (r *componentRegistry) define(key string, node *schemaNode) {
	if name, ok := r.names[key]; ok {
		r.schemas[name] = node
	}
}

func (r *componentRegistry) uniqueName(name string) string {
	safe := sanitizeComponentName(name)
	if safe == "" {
		safe = "Schema"
	}
	if _, exists := r.usedNames[safe]; !exists {
		r.usedNames[safe] = struct{}{}
		return safe
	}
	suffix := 1
	for {
		candidate := fmt.Sprintf("%s%d", safe, suffix)
		if _, exists := r.usedNames[candidate]; !exists {
			r.usedNames[candidate] = struct{}{}
			return candidate
		}
		suffix++
	}
}

func (r *componentRegistry) componentsMap() map[string]any {
	if len(r.schemas) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.schemas))
	for name, node := range r.schemas {
		out[name] = node.inlineOpenAPI()
	}
	return out
}

func componentRef(name string) string {
	return fmt.Sprintf("#/components/schemas/%s", name)
}

var componentNameRegexp = regexp.MustCompile(`[^a-zA-Z0-9_]+`)

func sanitizeComponentName(name string) string {
	name = componentNameRegexp.ReplaceAllString(name, "_")
	name = trimUnderscores(name)
	if name == "" {
		return ""
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

func trimUnderscores(input string) string {
	start := 0
	for start < len(input) && input[start] == '_' {
		start++
	}
	end := len(input)
	for end > start && input[end-1] == '_' {
		end--
	}
	return input[start:end]
}
