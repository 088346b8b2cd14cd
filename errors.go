package enable

import "github.com/pkg/errors"

// Errors for the enable discriminator itself. A failure of the payload under
// enable: true is not one of these; it carries the payload type's own error
// as its cause instead. Match with errors.Cause or errors.Is.
var (
	// ErrEnableMissing is returned when a section has no enable field.
	// Null documents count as missing: an empty section must not silently
	// decode as off.
	ErrEnableMissing = errors.New("missing enable field")

	// ErrEnableNotBool is returned when the enable field is present but
	// its value is not one of the boolean literals.
	ErrEnableNotBool = errors.New("enable field must be a boolean")
)
