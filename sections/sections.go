// Package sections reads and toggles the enable-wrapped sections of a
// configuration object. The object is expected to be a struct whose top
// level fields are sections; a field is a section when its address
// implements the Section interface, which *enable.Enable does for any
// payload type.
//
// The name of a section comes from its `section` struct tag, falling back
// to the `toml` tag, the `json` tag, and finally the Go field name.
//
// Example:
//    type SMTPConfig struct {
//        Host     string `toml:"host"`
//        Password string `toml:"password" section:",redact"`
//    }
//    type Config struct {
//        SMTP enable.Enable[SMTPConfig] `section:"smtp"`
//    }
//    // Report each section's state
//    summary, err := sections.Summary(&c)
//    // Turn a section on, merging options over its current state
//    updated, err := sections.Apply(&c, sections.Toggle{
//        Section: "smtp",
//        Enabled: true,
//        Options: map[string]interface{}{"host": "mail.example.com:25"},
//    })
package sections

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/mitchellh/copystructure"
	"github.com/mitchellh/reflectwalk"
	"github.com/pkg/errors"
)

const (
	structTagKey = "section"
	enableField  = "enable"
)

// Section is a toggleable configuration section.
type Section interface {
	IsEnabled() bool
	MarshalMap() (map[string]interface{}, error)
	UnmarshalMap(map[string]interface{}) error
}

// Validater is a type that can validate itself. If a section is a
// Validater, then Validate() is called whenever it is modified.
type Validater interface {
	Validate() error
}

// redacter is implemented by sections that can redact sensitive options.
type redacter interface {
	RedactedMap() (map[string]interface{}, error)
}

// Summary returns the enabled state of every section by name.
func Summary(config interface{}) (map[string]bool, error) {
	walker, err := walkSections(config)
	if err != nil {
		return nil, err
	}
	summary := make(map[string]bool, len(walker.sections))
	for name, section := range walker.sections {
		summary[name] = section.IsEnabled()
	}
	return summary, nil
}

// Names returns the sorted names of every section.
func Names(config interface{}) ([]string, error) {
	walker, err := walkSections(config)
	if err != nil {
		return nil, err
	}
	names := append([]string(nil), walker.order...)
	sort.Strings(names)
	return names, nil
}

// Redacted returns each section's flattened options. Fields tagged
// `section:",redact"` are replaced with a boolean indicating whether a
// non-zero value was set. Disabled sections report only their enable state,
// since a disabled section carries no payload.
func Redacted(config interface{}) (map[string]map[string]interface{}, error) {
	walker, err := walkSections(config)
	if err != nil {
		return nil, err
	}
	redacted := make(map[string]map[string]interface{}, len(walker.sections))
	for name, section := range walker.sections {
		var options map[string]interface{}
		if r, ok := section.(redacter); ok {
			options, err = r.RedactedMap()
		} else {
			options, err = section.MarshalMap()
		}
		if err != nil {
			return nil, errors.Wrapf(err, "failed to redact section %s", name)
		}
		redacted[name] = options
	}
	return redacted, nil
}

// Toggle describes a change to one section: turning it on or off and, when
// enabling, option values to merge over the section's current state.
type Toggle struct {
	Section string
	Enabled bool
	Options map[string]interface{}
}

// Validate checks that the toggle is coherent.
func (t Toggle) Validate() error {
	if t.Section == "" {
		return errors.New("section cannot be empty")
	}
	if !t.Enabled && len(t.Options) > 0 {
		return errors.New("cannot provide options when disabling a section")
	}
	if _, ok := t.Options[enableField]; ok {
		return fmt.Errorf("cannot set the %s field via options", enableField)
	}
	return nil
}

// Apply returns a deep copy of config with the toggle applied to the named
// section; the original is never modified. config must be a pointer to a
// struct. Enabling an already enabled section is a partial update: the
// options are merged over the section's current flattened state. If the new
// section value implements Validater it is validated before the copy is
// returned.
func Apply(config interface{}, t Toggle) (interface{}, error) {
	if err := t.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid toggle")
	}
	if reflect.ValueOf(config).Kind() != reflect.Ptr {
		return nil, errors.New("config must be a pointer to a struct")
	}
	copy, err := deepCopy(config)
	if err != nil {
		return nil, err
	}
	walker, err := walkSections(copy)
	if err != nil {
		return nil, err
	}
	section, ok := walker.sections[t.Section]
	if !ok {
		return nil, fmt.Errorf("unknown section %s", t.Section)
	}

	state := map[string]interface{}{enableField: t.Enabled}
	if t.Enabled {
		if section.IsEnabled() {
			current, err := section.MarshalMap()
			if err != nil {
				return nil, errors.Wrapf(err, "failed to read section %s", t.Section)
			}
			for name, value := range current {
				state[name] = value
			}
		}
		for name, value := range t.Options {
			state[name] = value
		}
		state[enableField] = true
	}
	if err := section.UnmarshalMap(state); err != nil {
		return nil, errors.Wrapf(err, "failed to apply changes to configuration object for section %s", t.Section)
	}
	if v, ok := section.(Validater); ok {
		if err := v.Validate(); err != nil {
			return nil, errors.Wrap(err, "failed validation")
		}
	}
	return copy, nil
}

// deepCopy copies the configuration object. copystructure skips unexported
// fields, which would drop each wrapper's state, so section fields are
// restored by value afterwards. The section Apply modifies is rebuilt
// through the map codec and never aliases the original; untouched section
// payloads are carried over as values.
func deepCopy(config interface{}) (interface{}, error) {
	copy, err := copystructure.Copy(config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to copy configuration object")
	}
	src := reflect.Indirect(reflect.ValueOf(config))
	dst := reflect.Indirect(reflect.ValueOf(copy))
	if src.Kind() != reflect.Struct {
		return copy, nil
	}
	for i := 0; i < src.NumField(); i++ {
		if src.Type().Field(i).PkgPath != "" {
			continue
		}
		if _, ok := asSection(dst.Field(i)); !ok {
			continue
		}
		dst.Field(i).Set(src.Field(i))
	}
	return copy, nil
}

func walkSections(config interface{}) (*sectionWalker, error) {
	walker := newSectionWalker()
	if err := reflectwalk.Walk(config, walker); err != nil {
		return nil, errors.Wrap(err, "failed to read sections from configuration object")
	}
	return walker, nil
}

// sectionWalker collects the Section fields from the top level of a
// configuration struct.
type sectionWalker struct {
	depthWalker
	sections map[string]Section
	order    []string
}

func newSectionWalker() *sectionWalker {
	return &sectionWalker{sections: make(map[string]Section)}
}

func (w *sectionWalker) Struct(reflect.Value) error {
	return nil
}

func (w *sectionWalker) StructField(f reflect.StructField, v reflect.Value) error {
	switch w.depth {
	// Section level
	case 0:
		section, ok := asSection(v)
		if !ok {
			return nil
		}
		name := sectionName(f)
		if _, seen := w.sections[name]; !seen {
			w.order = append(w.order, name)
		}
		w.sections[name] = section
		// The wrapper's internals are not walkable.
		return reflectwalk.SkipEntry
	// Skip all other levels
	default:
	}
	return nil
}

// asSection returns the Section view of a struct field value. Values that
// are not addressable, such as fields of a config passed by value, are read
// through an addressable copy; they can be summarized but not applied to.
func asSection(v reflect.Value) (Section, bool) {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() || !v.CanInterface() {
			return nil, false
		}
		s, ok := v.Interface().(Section)
		return s, ok
	}
	if !v.CanInterface() {
		return nil, false
	}
	if v.CanAddr() {
		s, ok := v.Addr().Interface().(Section)
		return s, ok
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	s, ok := ptr.Interface().(Section)
	return s, ok
}

// sectionName returns the wire name of a section field: the section struct
// tag, falling back to toml, json, and finally the Go field name. All
// content after a "," is ignored.
func sectionName(f reflect.StructField) string {
	for _, tag := range []string{structTagKey, "toml", "json"} {
		if name := strings.Split(f.Tag.Get(tag), ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return f.Name
}

// depthWalker keeps track of the current depth count into nested structs.
type depthWalker struct {
	depth int
}

func (w *depthWalker) Enter(l reflectwalk.Location) error {
	if l == reflectwalk.StructField {
		w.depth++
	}
	return nil
}

func (w *depthWalker) Exit(l reflectwalk.Location) error {
	if l == reflectwalk.StructField {
		w.depth--
	}
	return nil
}
