package enable

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// mapUnmarshaler is the decode half of the map codec, satisfied by
// *Enable[T] for any T.
type mapUnmarshaler interface {
	UnmarshalMap(map[string]interface{}) error
}

// DecodeHook returns a mapstructure decode hook that routes map values into
// Enable fields through UnmarshalMap, so mapstructure based configuration
// loaders resolve the enable discriminator exactly like the JSON and TOML
// codecs do. Keys of yaml.v2 style map[interface{}]interface{} values are
// normalized to strings first.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.DecodeHookFuncValue(func(from, to reflect.Value) (interface{}, error) {
		if !to.CanAddr() {
			return from.Interface(), nil
		}
		um, ok := to.Addr().Interface().(mapUnmarshaler)
		if !ok {
			return from.Interface(), nil
		}
		section, err := normalizeKeys(from.Interface())
		if err != nil {
			return nil, err
		}
		if section == nil {
			return from.Interface(), nil
		}
		if err := um.UnmarshalMap(section); err != nil {
			return nil, err
		}
		return to.Interface(), nil
	})
}

// normalizeKeys converts a parsed section into a string-keyed map. The JSON
// libraries and the ghodss YAML bridge produce map[string]interface{}
// directly; yaml.v2 produces map[interface{}]interface{}.
func normalizeKeys(v interface{}) (map[string]interface{}, error) {
	switch v := v.(type) {
	case map[string]interface{}:
		return v, nil
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(v))
		for key, value := range v {
			name, ok := key.(string)
			if !ok {
				return nil, fmt.Errorf("section key %v is not a string", key)
			}
			m[name] = value
		}
		return m, nil
	default:
		return nil, nil
	}
}
