// Package openapi renders config type descriptor graphs as OpenAPI 3
// documents. The root type becomes the request body of a single operation;
// composite and enum types are published under components.schemas.
package openapi

import (
	"encoding/json"
	"fmt"

	configtypes "github.com/goliatone/go-configtypes"
)

// Generator builds OpenAPI documents from resolved config types.
type Generator struct {
	config generatorConfig
}

// NewGenerator constructs a generator with the provided options applied over
// the defaults.
func NewGenerator(opts ...GeneratorOption) *Generator {
	cfg := defaultGeneratorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Generator{config: cfg}
}

// Generate renders the document for root and every type reachable from it.
func (g *Generator) Generate(root configtypes.ConfigType) (map[string]any, error) {
	return newOpenAPIDocumentBuilder(g.config, root).build()
}

// GenerateKey resolves key in session and renders its document.
func (g *Generator) GenerateKey(session *configtypes.Session, key string) (map[string]any, error) {
	root, err := session.Resolve(key)
	if err != nil {
		return nil, err
	}
	return g.Generate(root)
}

// GenerateJSON is Generate followed by indented JSON encoding.
func (g *Generator) GenerateJSON(root configtypes.ConfigType) ([]byte, error) {
	document, err := g.Generate(root)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("openapi: encode document: %w", err)
	}
	return data, nil
}
