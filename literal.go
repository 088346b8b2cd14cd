package enable

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// literalTrue and literalFalse only accept their own boolean literal and
// always encode as that constant. The discriminator is checked through them
// on every decode path, so a wrong value fails variant resolution
// structurally rather than needing a separate check after the fact.

type literalTrue struct{}

func (literalTrue) MarshalJSON() ([]byte, error) {
	return []byte("true"), nil
}

func (*literalTrue) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		return errors.New("expected a true value, got null")
	}
	return literalTrue{}.accepts(*v)
}

func (literalTrue) accepts(v bool) error {
	if !v {
		return errors.New("expected a true value")
	}
	return nil
}

type literalFalse struct{}

func (literalFalse) MarshalJSON() ([]byte, error) {
	return []byte("false"), nil
}

func (*literalFalse) UnmarshalJSON(data []byte) error {
	var v *bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		return errors.New("expected a false value, got null")
	}
	return literalFalse{}.accepts(*v)
}

func (literalFalse) accepts(v bool) error {
	if v {
		return errors.New("expected a false value")
	}
	return nil
}
