package producer

import (
	"embed"
	"fmt"
	"sort"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names.
const (
	schemaParsed  = "parsed"
	schemaSummary = "summary"
)

// FieldError is one schema violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) String() string {
	return e.Field + ": " + e.Message
}

var (
	schemasOnce sync.Once
	schemas     map[string]*gojsonschema.Schema
	schemasErr  error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = make(map[string]*gojsonschema.Schema)
		for _, name := range []string{schemaParsed, schemaSummary} {
			data, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
			if err != nil {
				schemasErr = fmt.Errorf("read %s schema: %w", name, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				schemasErr = fmt.Errorf("compile %s schema: %w", name, err)
				return
			}
			schemas[name] = s
		}
	})
	return schemas, schemasErr
}

// checkSchema validates a JSON document against a named schema.
// It returns the violations sorted by field; nil means the document conforms.
func checkSchema(name string, doc []byte) ([]FieldError, error) {
	all, err := loadSchemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("validate against %s schema: %w", name, err)
	}
	if result.Valid() {
		return nil, nil
	}

	errs := make([]FieldError, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		errs = append(errs, FieldError{Field: e.Field(), Message: e.Description()})
	}
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field < errs[j].Field })
	return errs, nil
}
