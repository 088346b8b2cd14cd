package enable

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
)

// enableField is the discriminator every wire form of the wrapper carries.
const enableField = "enable"

// MarshalJSON encodes the wrapper as a single object with the enable member
// first. For an enabled section the payload's own object encoding is spliced
// in at the same depth, preserving its field order; no sub-key is introduced
// around the payload. A disabled section encodes as {"enable":false} exactly.
//
// The payload must encode as an object, since its fields share a nesting
// level with the discriminator. Payloads that encode as arrays, scalars or
// null are rejected, as are payloads whose object carries the reserved
// enable member.
func (e Enable[T]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"` + enableField + `":`)
	if !e.enabled {
		lit, _ := literalFalse{}.MarshalJSON()
		buf.Write(lit)
		buf.WriteByte('}')
		return buf.Bytes(), nil
	}
	lit, _ := literalTrue{}.MarshalJSON()
	buf.Write(lit)

	data, err := json.Marshal(e.inner)
	if err != nil {
		return nil, err
	}
	fields := bytes.TrimSpace(data)
	if len(fields) < 2 || fields[0] != '{' || fields[len(fields)-1] != '}' {
		return nil, fmt.Errorf("cannot flatten section payload of type %T: must encode as an object", e.inner)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(fields, &keys); err != nil {
		return nil, err
	}
	if _, ok := keys[enableField]; ok {
		return nil, fmt.Errorf("section payload of type %T carries the reserved field %q", e.inner, enableField)
	}
	if inner := bytes.TrimSpace(fields[1 : len(fields)-1]); len(inner) > 0 {
		buf.WriteByte(',')
		buf.Write(inner)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a single object, resolving the variant from its
// enable member: the true literal is attempted first, then the false
// literal. Under enable: true the remaining members must satisfy T's own
// decode contract and T's error is kept as the cause of any failure. Under
// enable: false the remaining members are ignored and not validated.
//
// Decoding always produces a fresh state; a previously enabled wrapper
// decoded from a disabled document drops its payload entirely.
func (e *Enable[T]) UnmarshalJSON(data []byte) error {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(data, &object); err != nil {
		return err
	}
	if object == nil {
		return ErrEnableMissing
	}
	raw, ok := object[enableField]
	if !ok {
		return ErrEnableMissing
	}

	var on literalTrue
	if err := json.Unmarshal(raw, &on); err == nil {
		delete(object, enableField)
		fields, err := json.Marshal(object)
		if err != nil {
			return err
		}
		var inner T
		if err := json.Unmarshal(fields, &inner); err != nil {
			return errors.Wrap(err, "cannot decode enabled section payload")
		}
		*e = On(inner)
		return nil
	}

	var off literalFalse
	if err := json.Unmarshal(raw, &off); err == nil {
		*e = Off[T]()
		return nil
	}
	return errors.Wrapf(ErrEnableNotBool, "cannot decode %s", raw)
}
