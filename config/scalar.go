package config

import (
	"strings"

	"github.com/pelletier/go-toml/v2/unstable"
)

// scalar is a leaf value of the pack file. A value of the wrong type is kept
// rather than failing the decode, so validation can report it by field path.
type scalar struct {
	set   bool
	isStr bool
	str   string
	kind  string
}

func stringScalar(s string) scalar {
	return scalar{set: true, isStr: true, str: s}
}

// UnmarshalTOML records string values and the kind of anything else.
func (s *scalar) UnmarshalTOML(n *unstable.Node) error {
	s.set = true
	switch n.Kind {
	case unstable.String:
		s.isStr, s.str = true, string(n.Data)
	case unstable.Bool:
		s.kind = "boolean"
	case unstable.InlineTable, unstable.Table:
		s.kind = "table"
	case unstable.LocalDate, unstable.LocalTime, unstable.LocalDateTime, unstable.DateTime:
		s.kind = "datetime"
	default:
		s.kind = strings.ToLower(n.Kind.String())
	}
	return nil
}

// UnmarshalYAML accepts any plain scalar as text, the way YAML reads
// unquoted values such as 1.20. Mappings and sequences are recorded by kind.
func (s *scalar) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw interface{}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	switch raw.(type) {
	case nil:
		return nil
	case map[interface{}]interface{}:
		s.set, s.kind = true, "table"
		return nil
	case []interface{}:
		s.set, s.kind = true, "array"
		return nil
	}

	var str string
	if err := unmarshal(&str); err != nil {
		return err
	}
	*s = stringScalar(str)
	return nil
}

// text returns the string value. A present value of another type is
// reported against field.
func (s scalar) text(errs *[]error, field string) (string, bool) {
	if !s.set {
		return "", false
	}
	if !s.isStr {
		*errs = append(*errs, invalid(field, "must be a string, got %s", s.kind))
		return "", false
	}
	return s.str, true
}

// Check required string
func requireString(errs *[]error, field string, s scalar) string {
	v, ok := s.text(errs, field)
	if !ok && s.set {
		return ""
	}
	if strings.TrimSpace(v) == "" {
		*errs = append(*errs, invalid(field, "must be a non-empty string"))
	}
	return v
}

// Report keys collected outside the known fields
func rejectUnknown(errs *[]error, prefix string, extra map[string]interface{}) {
	for key := range extra {
		field := key
		if prefix != "" {
			field = prefix + "." + key
		}
		*errs = append(*errs, invalid(field, "is not a recognized field"))
	}
}
