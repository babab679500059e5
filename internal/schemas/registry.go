package schemas

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed defs/*.schema.json
var defsFS embed.FS

// Names of the embedded extraction schemas
const (
	LinkedInProfile     = "linkedin_profile"
	ResumeProjects      = "resume_projects"
	RepoCandidates      = "repo_candidates"
	ProjectMappings     = "project_mappings"
	ProjectVerification = "project_verification"
	ResumeAssertions    = "resume_assertions"
	NarrativeFindings   = "narrative_findings"
	JobKeywords         = "job_keywords"
)

// Schema is a closed JSON schema used to constrain and check model output
type Schema struct {
	Name        string
	Description string

	raw      []byte
	doc      map[string]any
	compiled *gojsonschema.Schema
}

var (
	registryMu sync.Mutex
	registry   = make(map[string]*Schema)
)

// Get returns the embedded schema with the given name, compiling it on first use
func Get(name string) (*Schema, error) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if s, ok := registry[name]; ok {
		return s, nil
	}

	filename := path.Join("defs", name+".schema.json")
	raw, err := defsFS.ReadFile(filename)
	if err != nil {
		return nil, &SchemaLoadError{Path: filename, Message: "schema not embedded", Cause: err}
	}

	s, err := Parse(name, raw)
	if err != nil {
		return nil, err
	}
	registry[name] = s
	return s, nil
}

// MustGet is Get that panics on error; for schemas compiled into the binary
func MustGet(name string) *Schema {
	s, err := Get(name)
	if err != nil {
		panic(err)
	}
	return s
}

// List returns the names of all embedded schemas
func List() []string {
	entries, err := defsFS.ReadDir("defs")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".schema.json"))
	}
	sort.Strings(names)
	return names
}

// Parse compiles raw schema JSON. The root must be a closed object schema.
func Parse(name string, raw []byte) (*Schema, error) {
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "invalid schema JSON", Cause: err}
	}
	if doc["type"] != "object" {
		return nil, &SchemaLoadError{Path: name, Message: "root schema must be an object"}
	}
	if ap, ok := doc["additionalProperties"].(bool); !ok || ap {
		return nil, &SchemaLoadError{Path: name, Message: "root schema must set additionalProperties to false"}
	}

	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}

	desc, _ := doc["description"].(string)
	return &Schema{
		Name:        name,
		Description: desc,
		raw:         raw,
		doc:         doc,
		compiled:    compiled,
	}, nil
}

// Raw returns the schema JSON as embedded
func (s *Schema) Raw() json.RawMessage {
	return json.RawMessage(s.raw)
}

// Document returns a deep copy of the schema with the given keywords removed at every level.
// Providers that reject some keywords (defaults, bounds) receive a stripped copy.
func (s *Schema) Document(drop ...string) map[string]any {
	skip := make(map[string]bool, len(drop))
	for _, k := range drop {
		skip[k] = true
	}
	out, _ := stripKeys(s.doc, skip).(map[string]any)
	return out
}

func stripKeys(node any, skip map[string]bool) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, child := range v {
			if skip[k] {
				continue
			}
			// property names are data, not keywords
			if k == "properties" {
				props, _ := child.(map[string]any)
				copied := make(map[string]any, len(props))
				for name, p := range props {
					copied[name] = stripKeys(p, skip)
				}
				out[k] = copied
				continue
			}
			out[k] = stripKeys(child, skip)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, child := range v {
			out[i] = stripKeys(child, skip)
		}
		return out
	default:
		return v
	}
}

// Decode fills schema defaults into content, validates it and unmarshals it into out
func (s *Schema) Decode(content string, out any) error {
	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}

	filled, _ := fillDefaults(s.doc, value, true)
	if err := s.validate(filled); err != nil {
		return err
	}

	normalized, err := json.Marshal(filled)
	if err != nil {
		return fmt.Errorf("failed to re-encode %s output: %w", s.Name, err)
	}
	if err := json.Unmarshal(normalized, out); err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return nil
}

// Validate checks content against the schema without filling defaults
func (s *Schema) Validate(content string) error {
	var value any
	if err := json.Unmarshal([]byte(content), &value); err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: fmt.Sprintf("invalid JSON: %v", err)}}}
	}
	return s.validate(value)
}

func (s *Schema) validate(value any) error {
	result, err := s.compiled.Validate(gojsonschema.NewGoLoader(value))
	if err != nil {
		return &SchemaLoadError{Path: s.Name, Message: "validation failed during load", Cause: err}
	}
	if result.Valid() {
		return nil
	}
	return newValidationError(result)
}

// fillDefaults walks value alongside the schema node, substituting "default" for
// missing or null leaves. The second return reports whether the value is present.
func fillDefaults(node map[string]any, value any, present bool) (any, bool) {
	if !present || value == nil {
		def, hasDefault := node["default"]
		if !hasDefault {
			return value, present
		}
		if value == nil && present && allowsNull(node) {
			return nil, true
		}
		return deepCopy(def), true
	}

	switch v := value.(type) {
	case map[string]any:
		props, _ := node["properties"].(map[string]any)
		for name, p := range props {
			propNode, ok := p.(map[string]any)
			if !ok {
				continue
			}
			child, had := v[name]
			filled, keep := fillDefaults(propNode, child, had)
			if keep {
				v[name] = filled
			}
		}
		return v, true
	case []any:
		items, ok := node["items"].(map[string]any)
		if !ok {
			return v, true
		}
		for i := range v {
			v[i], _ = fillDefaults(items, v[i], true)
		}
		return v, true
	default:
		return v, true
	}
}

func allowsNull(node map[string]any) bool {
	switch t := node["type"].(type) {
	case string:
		return t == "null"
	case []any:
		for _, x := range t {
			if x == "null" {
				return true
			}
		}
	}
	return false
}

func deepCopy(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, c := range x {
			out[k] = deepCopy(c)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, c := range x {
			out[i] = deepCopy(c)
		}
		return out
	default:
		return x
	}
}
