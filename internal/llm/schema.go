package llm

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// SchemaFor reflects a Schema from the JSON tags of T. Every property is
// required and additional properties are rejected, which is what strict
// structured-output modes expect.
func SchemaFor[T any](name, description string) (*Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	b, err := reflector.Reflect(v).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal schema %q: %w", name, err)
	}

	var def map[string]any
	if err := json.Unmarshal(b, &def); err != nil {
		return nil, fmt.Errorf("decode schema %q: %w", name, err)
	}
	delete(def, "$schema")
	delete(def, "$id")
	requireAll(def)

	return &Schema{Name: name, Description: description, Definition: def}, nil
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any](name, description string) *Schema {
	s, err := SchemaFor[T](name, description)
	if err != nil {
		panic(err)
	}
	return s
}

func requireAll(def map[string]any) {
	if t, _ := def["type"].(string); t == "object" {
		def["additionalProperties"] = false
		if props, ok := def["properties"].(map[string]any); ok && len(props) > 0 {
			required := make([]any, 0, len(props))
			for name := range props {
				required = append(required, name)
			}
			def["required"] = required
		}
	}
	if props, ok := def["properties"].(map[string]any); ok {
		for _, p := range props {
			if pm, ok := p.(map[string]any); ok {
				requireAll(pm)
			}
		}
	}
	if items, ok := def["items"].(map[string]any); ok {
		requireAll(items)
	}
}
