/*
	Package enable wraps configuration sections that are turned on or off
	by a single boolean field.

	A wrapped section encodes as one object whose "enable" member sits next
	to the section's own fields, at the same nesting level:

	    {"enable": true, "host": "mail.example.com", "port": 25}

	The section's fields are only meaningful when the section is enabled.
	When enable is false the remaining members of the object are ignored
	entirely, so a document may keep stale or placeholder values in a
	disabled section without tripping validation:

	    {"enable": false, "host": ""}

	When enable is true the remaining members must satisfy the payload
	type's own decode contract, and any failure there is the wrapper's
	failure. A document without an enable member, or with a non-boolean
	one, never decodes; an empty section does not silently read as off.

	The wrapper speaks three wire forms that all share one resolution path:
	JSON via encoding/json (and therefore YAML via the ghodss bridge), TOML
	via BurntSushi, and already-parsed maps for mapstructure based loaders.
	JSON and TOML output writes the enable member first; YAML output orders
	keys alphabetically, so there enable sits wherever the alphabet puts
	it. The "enable" member is reserved: a payload type must not declare a
	field with that name.

	The sections subpackage reads and toggles the wrapped sections of a
	larger configuration struct, and cmd/enablecheck lints configuration
	documents for malformed sections.
*/
package enable
