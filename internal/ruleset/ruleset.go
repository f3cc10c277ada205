// Package ruleset loads rule documents: a form's field definitions, its
// conditional rules and optional initial data, stored as YAML or JSON.
package ruleset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/solatis/formlogic/internal/rules"
	"github.com/solatis/formlogic/internal/types"
)

/*
 * Rule document loading.
 *
 * Documents are decoded in three steps:
 *   1. YAML is converted to JSON so both formats share one decoding path
 *   2. The generic JSON value is checked against the embedded JSON Schema
 *      (structure only: field and rule shapes, value kinds)
 *   3. The JSON is unmarshalled into Document
 *
 * Semantic checks (dangling field references, unknown conditions, circular
 * dependencies) belong to rules.ValidateRules and run separately, so a
 * document can be loaded and then reported on in full.
 */

// Format identifies a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const schemaURL = "https://formlogic.schemas.local/document.schema.json"

//go:embed document.schema.json
var documentSchema string

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(schemaURL, strings.NewReader(documentSchema)); err != nil {
		return nil, fmt.Errorf("document schema load failed: %w", err)
	}
	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("document schema compile failed: %w", err)
	}
	return compiled, nil
})

// Document is a form's fields and rules plus optional initial form data.
type Document struct {
	Fields []types.Field           `json:"fields" yaml:"fields"`
	Rules  []types.ConditionalRule `json:"rules" yaml:"rules"`
	Data   map[string]any          `json:"data,omitempty" yaml:"data,omitempty"`
}

// FormatFromPath derives the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported document extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document. Schema violations wrap types.ErrInvalidDocument.
func Parse(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatJSON:
	case FormatYAML:
		converted, err := yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
		}
		data = converted
	default:
		return nil, fmt.Errorf("unsupported document format %q", format)
	}

	var generic any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}

	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrInvalidDocument, err)
	}
	return &doc, nil
}

// Validate runs static rule validation against the document's fields.
func (d *Document) Validate() types.ValidationResult {
	return rules.ValidateRules(d.Rules, d.Fields)
}

// NewEngine creates an engine with the document's field states initialized
// and its rules registered. Document data is not applied.
func (d *Document) NewEngine(opts ...rules.Option) (*rules.Engine, error) {
	all := make([]rules.Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, rules.WithRules(d.Rules))
	en, err := rules.NewEngine(all...)
	if err != nil {
		return nil, err
	}
	en.InitializeFieldStates(d.Fields)
	return en, nil
}

// Field returns the field definition with the given id.
func (d *Document) Field(id string) (types.Field, bool) {
	for _, f := range d.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return types.Field{}, false
}
