package enable

import (
	"encoding"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
)

const (
	structTagKey  = "section"
	redactKeyword = "redact"
)

// StateOf reads just the discriminator from a parsed section map. It is the
// shared variant-resolution path for the map and TOML codecs and lets
// generic tooling report a section's state without knowing its payload type.
func StateOf(section map[string]interface{}) (bool, error) {
	raw, ok := section[enableField]
	if !ok {
		return false, ErrEnableMissing
	}
	v, ok := raw.(bool)
	if !ok {
		return false, errors.Wrapf(ErrEnableNotBool, "got %T", raw)
	}
	if err := (literalTrue{}).accepts(v); err == nil {
		return true, nil
	}
	if err := (literalFalse{}).accepts(v); err != nil {
		return false, err
	}
	return false, nil
}

// UnmarshalMap decodes the wrapper from an already parsed map, following the
// same contract as UnmarshalJSON. The payload is decoded with mapstructure
// under the toml tag convention; string values decode into time.Duration
// fields and into any field implementing encoding.TextUnmarshaler.
func (e *Enable[T]) UnmarshalMap(section map[string]interface{}) error {
	if section == nil {
		return ErrEnableMissing
	}
	on, err := StateOf(section)
	if err != nil {
		return err
	}
	if !on {
		*e = Off[T]()
		return nil
	}
	options := make(map[string]interface{}, len(section)-1)
	for name, value := range section {
		if name == enableField {
			continue
		}
		options[name] = value
	}
	var inner T
	if err := decodeOptions(options, &inner); err != nil {
		return err
	}
	*e = On(inner)
	return nil
}

func decodeOptions(options map[string]interface{}, c interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "toml",
		Result:  c,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			decodeStringToTextUnmarshaler,
		),
	})
	if err != nil {
		return errors.Wrap(err, "failed to initialize mapstructure decoder")
	}
	if err := dec.Decode(options); err != nil {
		return errors.Wrapf(err, "failed to decode options into %T", c)
	}
	return nil
}

var textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()

// decodeStringToTextUnmarshaler will decode a string value into any type
// that implements the encoding.TextUnmarshaler interface.
func decodeStringToTextUnmarshaler(f, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	isPtr := true
	if t.Kind() != reflect.Ptr {
		isPtr = false
		t = reflect.PtrTo(t)
	}
	if t.Implements(textUnmarshalerType) {
		value := reflect.New(t.Elem())
		tum := value.Interface().(encoding.TextUnmarshaler)
		str := data.(string)
		if err := tum.UnmarshalText([]byte(str)); err != nil {
			return nil, err
		}
		if isPtr {
			return value.Interface(), nil
		}
		return reflect.Indirect(value).Interface(), nil
	}
	return data, nil
}

// MarshalMap returns the flattened wire map for the wrapper: the enable
// member plus, when on, the payload's top-level fields. Field names follow
// the section struct tag, falling back to toml, then json, then the Go
// field name. An embedded struct field is emitted as one value under its
// own name, not promoted the way encoding/json promotes it, matching how
// mapstructure reads the map back. A disabled wrapper yields
// {"enable": false} only.
func (e Enable[T]) MarshalMap() (map[string]interface{}, error) {
	m := map[string]interface{}{enableField: false}
	if !e.enabled {
		return m, nil
	}
	m[enableField] = true

	v := reflect.ValueOf(e.inner)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, fmt.Errorf("cannot flatten nil section payload of type %T", e.inner)
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("cannot flatten section payload of type %T: keys must be strings", e.inner)
		}
		iter := v.MapRange()
		for iter.Next() {
			name := iter.Key().String()
			if name == enableField {
				return nil, fmt.Errorf("section payload of type %T carries the reserved field %q", e.inner, enableField)
			}
			m[name] = iter.Value().Interface()
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" {
				continue
			}
			name := sectionFieldName(f)
			if name == "-" {
				continue
			}
			if name == enableField {
				return nil, fmt.Errorf("section payload type %T declares the reserved field %q", e.inner, enableField)
			}
			m[name] = v.Field(i).Interface()
		}
	default:
		return nil, fmt.Errorf("cannot flatten section payload of type %T: must be a field set", e.inner)
	}
	return m, nil
}

// RedactedMap is MarshalMap with every field tagged `section:",redact"`
// replaced by a boolean indicating whether a non-zero value was set.
func (e Enable[T]) RedactedMap() (map[string]interface{}, error) {
	m, err := e.MarshalMap()
	if err != nil {
		return nil, err
	}
	if !e.enabled {
		return m, nil
	}
	v := reflect.Indirect(reflect.ValueOf(e.inner))
	if v.Kind() != reflect.Struct {
		return m, nil
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.PkgPath != "" || !isRedacted(f) {
			continue
		}
		name := sectionFieldName(f)
		if name == "-" {
			continue
		}
		m[name] = !v.Field(i).IsZero()
	}
	return m, nil
}

// sectionFieldName returns the wire name of a payload field: the section
// struct tag, falling back to toml, json, and finally the Go field name.
// All content after a "," is ignored.
func sectionFieldName(f reflect.StructField) string {
	for _, tag := range []string{structTagKey, "toml", "json"} {
		if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" {
			return name
		}
	}
	return f.Name
}

func isRedacted(f reflect.StructField) bool {
	parts := strings.Split(f.Tag.Get(structTagKey), ",")
	for _, p := range parts[1:] {
		if p == redactKeyword {
			return true
		}
	}
	return false
}
