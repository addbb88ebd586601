package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	configtypes "github.com/goliatone/go-configtypes"
	"github.com/goliatone/go-configtypes/internal/hydrate"
	"gopkg.in/yaml.v3"
)

// Format identifies the serialization of a snapshot document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("snapshot: cannot infer format from %q", path)
	}
}

// Document is the serialized form of a snapshot: an id and the flat list of
// type metadata produced by the schema builder.
type Document struct {
	ID    string                 `json:"id,omitempty" yaml:"id,omitempty"`
	Types []configtypes.TypeMeta `json:"types" yaml:"types"`
}

// Snapshot indexes the document into an immutable Memory snapshot.
func (d Document) Snapshot() (*Memory, error) {
	return NewMemory(d.ID, d.Types...)
}

var documentDecoder = hydrate.NewDecoder[Document](
	hydrate.WithPreHook[Document](normalizeTypes),
	hydrate.WithPostHook[Document](fillDocumentDefaults),
)

// Decode parses data as a snapshot document. When the document carries no id
// one is derived from the content digest, so identical payloads share an id.
func Decode(data []byte, format Format, source string) (Document, error) {
	var payload map[string]any
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &payload); err != nil {
			return Document{}, fmt.Errorf("snapshot: parse json %s: %w", source, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &payload); err != nil {
			return Document{}, fmt.Errorf("snapshot: parse yaml %s: %w", source, err)
		}
	default:
		return Document{}, fmt.Errorf("snapshot: unsupported format %q", format)
	}
	if payload == nil {
		return Document{}, fmt.Errorf("snapshot: %s is empty", source)
	}

	doc, err := documentDecoder.Decode(hydrate.Context{Source: source, Format: string(format)}, payload)
	if err != nil {
		return Document{}, err
	}
	if doc.ID == "" {
		doc.ID = contentID(data)
	}
	return doc, nil
}

// LoadFile reads and decodes the snapshot document at path.
func LoadFile(path string) (*Memory, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read %s: %w", path, err)
	}
	doc, err := Decode(data, format, path)
	if err != nil {
		return nil, err
	}
	return doc.Snapshot()
}

// normalizeTypes upper-cases kinds and marks fields that carry a
// default_value_as_str without an explicit default_provided flag.
func normalizeTypes(_ hydrate.Context, payload map[string]any) (map[string]any, error) {
	types, ok := payload["types"].([]any)
	if !ok {
		return payload, nil
	}
	for i, entry := range types {
		meta, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("types[%d] must be an object, got %T", i, entry)
		}
		if kind, ok := meta["kind"].(string); ok {
			parsed, _ := configtypes.ParseKind(kind)
			meta["kind"] = parsed.String()
		}
		fields, _ := meta["fields"].([]any)
		for j, raw := range fields {
			field, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("types[%d].fields[%d] must be an object, got %T", i, j, raw)
			}
			if err := normalizeDefault(field); err != nil {
				return nil, fmt.Errorf("types[%d].fields[%d]: %w", i, j, err)
			}
		}
	}
	return payload, nil
}

func normalizeDefault(field map[string]any) error {
	value, present := field["default_value_as_str"]
	if !present || value == nil {
		return nil
	}
	if _, isString := value.(string); !isString {
		// YAML reads unquoted defaults such as 3 or true as typed scalars.
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("default_value_as_str: %w", err)
		}
		field["default_value_as_str"] = string(encoded)
	}
	if _, set := field["default_provided"]; !set {
		field["default_provided"] = true
	}
	return nil
}

func fillDocumentDefaults(_ hydrate.Context, doc *Document) error {
	if doc.Types == nil {
		doc.Types = []configtypes.TypeMeta{}
	}
	return nil
}

func contentID(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:8])
}
