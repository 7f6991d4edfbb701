// Package schema checks raw section patches against JSON Schemas before they
// are decoded, so unknown keys and wrongly typed values are rejected with a
// field-level message instead of being silently dropped by encoding/json.
package schema

import (
	"embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/sakif/flexfolio/internal/apperror"
	"github.com/sakif/flexfolio/internal/model"
)

//go:embed sections/*.json
var sectionFiles embed.FS

// Sections holds one compiled schema per editable section.
type Sections struct {
	schemas map[model.Section]*gojsonschema.Schema
}

// Load compiles the embedded section schemas.
func Load() (*Sections, error) {
	s := &Sections{schemas: make(map[model.Section]*gojsonschema.Schema, len(model.Sections))}
	for _, sec := range model.Sections {
		raw, err := sectionFiles.ReadFile("sections/" + string(sec) + ".json")
		if err != nil {
			return nil, fmt.Errorf("schema: reading %s: %w", sec, err)
		}
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("schema: compiling %s: %w", sec, err)
		}
		s.schemas[sec] = compiled
	}
	return s, nil
}

// MustLoad is Load for program start-up, where a broken embedded schema is a
// build defect.
func MustLoad() *Sections {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// Validate checks doc against the schema of section.
func (s *Sections) Validate(section model.Section, doc []byte) error {
	compiled, ok := s.schemas[section]
	if !ok {
		return apperror.ValidationFailed("section", fmt.Sprintf("unknown section %q", section))
	}

	res, err := compiled.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		// The document is not JSON at all.
		return apperror.ValidationFailed("", "request body must be a JSON object")
	}
	if res.Valid() {
		return nil
	}

	first := res.Errors()[0]
	return apperror.ValidationFailed(fieldOf(first), first.Description())
}

// fieldOf names the offending key. Root-level errors such as an unexpected
// property report it in Details rather than in Field.
func fieldOf(e gojsonschema.ResultError) string {
	field := e.Field()
	if field == rootField || field == "" {
		if p, ok := e.Details()["property"].(string); ok {
			return p
		}
		return ""
	}
	return strings.TrimPrefix(field, rootField+".")
}

const rootField = "(root)"
