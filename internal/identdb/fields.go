package identdb

import (
	"regexp"
	"strings"
)

var nameRe = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// ValidName enforces Ubuntu-style login and group name requirements:
// lowercase letters/digits/underscore/dash, starting with a letter or
// underscore, at most 32 characters.
func ValidName(s string) bool {
	return nameRe.MatchString(s)
}

// checkField rejects values that would corrupt the serialized form.
// The colon is the field delimiter and the newline the record
// delimiter, so neither may appear inside a field.
func checkField(op, field, value string) error {
	if strings.ContainsAny(value, ":\n") {
		return precondition(op, "field %s contains a colon or newline: %q", field, value)
	}
	return nil
}

func checkFields(op string, fields map[string]string) error {
	for name, value := range fields {
		if err := checkField(op, name, value); err != nil {
			return err
		}
	}
	return nil
}

func checkMemberList(op string, members []string) error {
	for _, m := range members {
		if err := checkField(op, "member", m); err != nil {
			return err
		}
		if strings.Contains(m, ",") {
			return precondition(op, "member name contains a comma: %q", m)
		}
	}
	return nil
}
