package entity

import "fmt"

func assignString(dst *string, key string, value any) error {
	s, ok := value.(string)
	if !ok {
		return typeError(key, "string", value)
	}
	*dst = s
	return nil
}

func assignBool(dst *bool, key string, value any) error {
	b, ok := value.(bool)
	if !ok {
		return typeError(key, "bool", value)
	}
	*dst = b
	return nil
}

func assignFloat(dst *float64, key string, value any) error {
	f, ok := toFloat(value)
	if !ok {
		return typeError(key, "number", value)
	}
	*dst = f
	return nil
}

func assignList(dst *[]any, key string, value any) error {
	switch v := value.(type) {
	case []any:
		*dst = v
	case []string:
		list := make([]any, 0, len(v))
		for _, s := range v {
			list = append(list, s)
		}
		*dst = list
	default:
		return typeError(key, "list", value)
	}
	return nil
}

func assignStrings(dst *[]string, key string, value any) error {
	switch v := value.(type) {
	case []string:
		*dst = v
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return typeError(key, "list of strings", value)
			}
			list = append(list, s)
		}
		*dst = list
	default:
		return typeError(key, "list of strings", value)
	}
	return nil
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	}
	return 0, false
}

func typeError(key, want string, value any) error {
	return fmt.Errorf("%w: %s expects %s, got %T", ErrFieldType, key, want, value)
}
