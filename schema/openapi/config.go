package openapi

import (
	"strings"
)

const (
	defaultOpenAPIVersion = "3.0.3"
	defaultTitle          = "Config Schema"
	defaultDocVersion     = "1.0.0"
	defaultPath           = "/config"
	defaultMethod         = "post"
	defaultContentType    = "application/json"
)

type generatorConfig struct {
	openAPIVersion string
	info           infoConfig
	operation      operationConfig
	contentType    string
	responses      map[string]responseConfig
	rootComponent  string
	extensions     bool
	componentName  func(key string) string
}

type infoConfig struct {
	Title       string
	Version     string
	Description string
}

type operationConfig struct {
	Path        string
	Method      string
	OperationID string
	Summary     string
}

type responseConfig struct {
	Description string
}

func defaultGeneratorConfig() generatorConfig {
	return generatorConfig{
		openAPIVersion: defaultOpenAPIVersion,
		info:           infoConfig{Title: defaultTitle, Version: defaultDocVersion},
		operation:      operationConfig{Path: defaultPath, Method: defaultMethod},
		contentType:    defaultContentType,
		responses:      map[string]responseConfig{"204": {Description: "OK"}},
		extensions:     true,
		componentName:  func(key string) string { return key },
	}
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*generatorConfig)

// WithOpenAPIVersion sets the document's openapi field. Defaults to 3.0.3.
func WithOpenAPIVersion(version string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if version != "" {
			cfg.openAPIVersion = version
		}
	}
}

// InfoOption configures optional fields of the info section.
type InfoOption func(*infoConfig)

// WithInfoDescription sets info.description.
func WithInfoDescription(description string) InfoOption {
	return func(info *infoConfig) {
		info.Description = description
	}
}

// WithInfo sets info.title and info.version. Empty values keep the defaults.
func WithInfo(title, version string, opts ...InfoOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if title != "" {
			cfg.info.Title = title
		}
		if version != "" {
			cfg.info.Version = version
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.info)
			}
		}
	}
}

// OperationOption configures optional fields of the generated operation.
type OperationOption func(*operationConfig)

// WithOperationSummary sets the operation summary.
func WithOperationSummary(summary string) OperationOption {
	return func(operation *operationConfig) {
		operation.Summary = summary
	}
}

// WithOperation sets the path and method whose request body carries the root
// type. An empty operationID is derived as "method:path".
func WithOperation(path, method, operationID string, opts ...OperationOption) GeneratorOption {
	return func(cfg *generatorConfig) {
		if path != "" {
			cfg.operation.Path = path
		}
		if method != "" {
			cfg.operation.Method = strings.ToLower(method)
		}
		if operationID != "" {
			cfg.operation.OperationID = operationID
		}
		for _, opt := range opts {
			if opt != nil {
				opt(&cfg.operation)
			}
		}
	}
}

// WithContentType sets the request body media type.
func WithContentType(contentType string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if contentType != "" {
			cfg.contentType = contentType
		}
	}
}

// WithResponse adds or replaces the response for status.
func WithResponse(status, description string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if status == "" {
			return
		}
		if cfg.responses == nil {
			cfg.responses = map[string]responseConfig{}
		}
		resp := cfg.responses[status]
		if description != "" {
			resp.Description = description
		}
		cfg.responses[status] = resp
	}
}

// WithRootComponent publishes the root under components.schemas as name,
// even when it is a scalar or array that would otherwise be inlined.
func WithRootComponent(name string) GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.rootComponent = name
	}
}

// WithoutExtensions drops the x-config-key, x-config-kind, x-config-scalar
// and x-enum-descriptions vendor extensions.
func WithoutExtensions() GeneratorOption {
	return func(cfg *generatorConfig) {
		cfg.extensions = false
	}
}

// WithComponentNames maps a type key to the base component name. The result
// is still sanitised and made unique.
func WithComponentNames(fn func(key string) string) GeneratorOption {
	return func(cfg *generatorConfig) {
		if fn != nil {
			cfg.componentName = fn
		}
	}
}
