package enable

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// UnmarshalTOML implements toml.Unmarshaler. The wrapper decodes from a
// table whose enable key resolves the variant. Under enable = true the
// remaining keys are re-encoded and decoded again directly into the payload,
// so the payload sees its usual TOML decoding behavior and reports its own
// errors; under enable = false they are ignored.
func (e *Enable[T]) UnmarshalTOML(data interface{}) error {
	section, ok := data.(map[string]interface{})
	if !ok {
		return fmt.Errorf("enable section must be a table, got %T", data)
	}
	on, err := StateOf(section)
	if err != nil {
		return err
	}
	if !on {
		*e = Off[T]()
		return nil
	}
	fields := make(map[string]interface{}, len(section)-1)
	for name, value := range section {
		if name == enableField {
			continue
		}
		fields[name] = value
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(fields); err != nil {
		return errors.Wrap(err, "failed to reencode toml data")
	}
	var inner T
	if _, err := toml.Decode(buf.String(), &inner); err != nil {
		return errors.Wrap(err, "cannot decode enabled section payload")
	}
	*e = On(inner)
	return nil
}

// MarshalTOML implements toml.Marshaler. The wrapper encodes as an inline
// table with enable first, then the payload's fields in the payload's own
// TOML encoding order. The order is recovered from the metadata of the
// payload's canonical encoding; nested tables render inline with their keys
// sorted.
func (e Enable[T]) MarshalTOML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{ " + enableField + " = ")
	if !e.enabled {
		buf.WriteString("false }")
		return buf.Bytes(), nil
	}
	buf.WriteString("true")

	var canonical bytes.Buffer
	if err := toml.NewEncoder(&canonical).Encode(e.inner); err != nil {
		return nil, errors.Wrap(err, "failed to encode section payload")
	}
	var fields map[string]interface{}
	md, err := toml.Decode(canonical.String(), &fields)
	if err != nil {
		return nil, errors.Wrap(err, "failed to reread section payload")
	}
	for _, key := range md.Keys() {
		if len(key) != 1 {
			// Keys of nested tables are rendered as part of their
			// parent value.
			continue
		}
		name := key[0]
		if name == enableField {
			return nil, fmt.Errorf("section payload type %T declares the reserved field %q", e.inner, enableField)
		}
		buf.WriteString(", ")
		writeTOMLKey(&buf, name)
		buf.WriteString(" = ")
		if err := writeTOMLValue(&buf, fields[name]); err != nil {
			return nil, err
		}
	}
	buf.WriteString(" }")
	return buf.Bytes(), nil
}

func writeTOMLKey(buf *bytes.Buffer, name string) {
	for _, r := range name {
		bare := r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' ||
			r >= '0' && r <= '9' || r == '-' || r == '_'
		if !bare {
			buf.WriteString(strconv.Quote(name))
			return
		}
	}
	buf.WriteString(name)
}

// writeTOMLValue renders a decoded TOML value in inline form.
func writeTOMLValue(buf *bytes.Buffer, v interface{}) error {
	switch v := v.(type) {
	case string:
		buf.WriteString(strconv.Quote(v))
	case bool:
		buf.WriteString(strconv.FormatBool(v))
	case int64:
		buf.WriteString(strconv.FormatInt(v, 10))
	case float64:
		s := strconv.FormatFloat(v, 'g', -1, 64)
		buf.WriteString(s)
		if !strings.ContainsAny(s, ".eE") {
			// Keep the value a float on reread.
			buf.WriteString(".0")
		}
	case time.Time:
		buf.WriteString(v.Format(time.RFC3339Nano))
	case []interface{}:
		buf.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				buf.WriteString(", ")
			}
			if err := writeTOMLValue(buf, elem); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case map[string]interface{}:
		if len(v) == 0 {
			buf.WriteString("{}")
			return nil
		}
		names := make([]string, 0, len(v))
		for name := range v {
			names = append(names, name)
		}
		sort.Strings(names)
		buf.WriteString("{ ")
		for i, name := range names {
			if i > 0 {
				buf.WriteString(", ")
			}
			writeTOMLKey(buf, name)
			buf.WriteString(" = ")
			if err := writeTOMLValue(buf, v[name]); err != nil {
				return err
			}
		}
		buf.WriteString(" }")
	default:
		return fmt.Errorf("cannot render %T as a toml value", v)
	}
	return nil
}
