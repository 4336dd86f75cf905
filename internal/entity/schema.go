package entity

type Default struct {
	Key   string
	Value any
}

// Schema is an ordered list of field defaults. Order is significant: it
// fixes the merge order at construction and the role numbering.
type Schema []Default

var BaseSchema = Schema{
	{Key: "name", Value: "default"},
	{Key: "isSelected", Value: false},
	{Key: "isProcessing", Value: false},
	{Key: "isToggled", Value: true},
	{Key: "optional", Value: true},
	{Key: "hasError", Value: false},
	{Key: "hasWarning", Value: false},
	{Key: "hasMessage", Value: false},
	{Key: "succeeded", Value: false},
	{Key: "currentProgress", Value: 0.0},
	{Key: "errors", Value: []any{}},
	{Key: "warnings", Value: []any{}},
	{Key: "messages", Value: []any{}},
}

var InstanceSchema = Schema{
	{Key: "family", Value: "default"},
	{Key: "niceName", Value: "default"},
}

var PluginSchema = Schema{
	{Key: "optional", Value: false},
	{Key: "doc", Value: nil},
	{Key: "hasRepair", Value: false},
	{Key: "hasCompatible", Value: false},
	{Key: "families", Value: []string{}},
	{Key: "hosts", Value: []string{}},
	{Key: "type", Value: "unknown"},
}

func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s))
	for _, d := range s {
		keys = append(keys, d.Key)
	}
	return keys
}

// Lookup returns the default for key.
func (s Schema) Lookup(key string) (any, bool) {
	for _, d := range s {
		if d.Key == key {
			return cloneValue(d.Value), true
		}
	}
	return nil, false
}

// SchemasFor returns the layered schemas applied to entities of kind.
func SchemasFor(kind Kind) []Schema {
	switch kind {
	case KindInstance:
		return []Schema{BaseSchema, InstanceSchema}
	case KindPlugin:
		return []Schema{BaseSchema, PluginSchema}
	default:
		return []Schema{BaseSchema}
	}
}

// UnionKeys returns the keys of schemas in first-seen order without
// duplicates.
func UnionKeys(schemas ...Schema) []string {
	seen := make(map[string]struct{})
	var keys []string
	for _, schema := range schemas {
		for _, d := range schema {
			if _, ok := seen[d.Key]; ok {
				continue
			}
			seen[d.Key] = struct{}{}
			keys = append(keys, d.Key)
		}
	}
	return keys
}

func merge(e Entity, data map[string]any, schemas []Schema) {
	for _, schema := range schemas {
		for _, d := range schema {
			value := cloneValue(d.Value)
			if override, ok := data[d.Key]; ok && override != nil {
				value = override
			}
			if err := e.SetField(d.Key, value); err != nil {
				// An override of the wrong shape keeps the default.
				_ = e.SetField(d.Key, cloneValue(d.Value))
			}
		}
	}
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		return append([]any{}, val...)
	case []string:
		return append([]string{}, val...)
	default:
		return v
	}
}
