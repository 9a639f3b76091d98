package frame

import "fmt"

// UniqueFieldName returns a name for field that does not clash with the
// other fields of f. Each field in f with the same name (other than field
// itself) counts as a duplicate; with n duplicates the result is "name n+1".
func UniqueFieldName(field *Field, f *Frame) string {
	if f == nil {
		return field.Name
	}

	dupes := 0
	for _, other := range f.Fields {
		if other == field {
			continue
		}
		if other.Name == field.Name {
			dupes++
		}
	}

	if dupes > 0 {
		return fmt.Sprintf("%s %d", field.Name, dupes+1)
	}
	return field.Name
}
