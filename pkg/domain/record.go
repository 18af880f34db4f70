// Package domain defines the question record model shared by the store,
// its persistence backends and the exporters.
package domain

import (
	"strings"
)

// Field names one column of the fixed question schema.
type Field string

const (
	FieldQuestion Field = "Question"
	FieldAnswer   Field = "Answer"
	FieldOption1  Field = "Option1"
	FieldOption2  Field = "Option2"
	FieldOption3  Field = "Option3"
	FieldCategory Field = "Category"
	FieldSource   Field = "Source"
)

// Fields lists the schema in column order.
var Fields = []Field{
	FieldQuestion,
	FieldAnswer,
	FieldOption1,
	FieldOption2,
	FieldOption3,
	FieldCategory,
	FieldSource,
}

// ColumnNames returns the schema as header cells.
func ColumnNames() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = string(f)
	}
	return out
}

// ParseField resolves a user supplied field name, ignoring case and
// surrounding whitespace.
func ParseField(name string) (Field, bool) {
	name = strings.TrimSpace(name)
	for _, f := range Fields {
		if strings.EqualFold(string(f), name) {
			return f, true
		}
	}
	return "", false
}

// RecordID is the store-assigned identity of a record. It never changes
// when the record is filtered, reordered or edited.
type RecordID int64

// Record is one question entry. Every field is a plain string; absent
// values are empty.
type Record struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer" yaml:"answer"`
	Option1  string `json:"option1" yaml:"option1"`
	Option2  string `json:"option2" yaml:"option2"`
	Option3  string `json:"option3" yaml:"option3"`
	Category string `json:"category" yaml:"category"`
	Source   string `json:"source" yaml:"source"`
}

// Get returns the value of f, or "" for an unknown field.
func (r Record) Get(f Field) string {
	switch f {
	case FieldQuestion:
		return r.Question
	case FieldAnswer:
		return r.Answer
	case FieldOption1:
		return r.Option1
	case FieldOption2:
		return r.Option2
	case FieldOption3:
		return r.Option3
	case FieldCategory:
		return r.Category
	case FieldSource:
		return r.Source
	}
	return ""
}

// Set assigns value to f. It reports false for an unknown field.
func (r *Record) Set(f Field, value string) bool {
	switch f {
	case FieldQuestion:
		r.Question = value
	case FieldAnswer:
		r.Answer = value
	case FieldOption1:
		r.Option1 = value
	case FieldOption2:
		r.Option2 = value
	case FieldOption3:
		r.Option3 = value
	case FieldCategory:
		r.Category = value
	case FieldSource:
		r.Source = value
	default:
		return false
	}
	return true
}

// Values returns the record in column order.
func (r Record) Values() []string {
	out := make([]string, len(Fields))
	for i, f := range Fields {
		out[i] = r.Get(f)
	}
	return out
}

// Options returns the three answer options in order.
func (r Record) Options() [3]string {
	return [3]string{r.Option1, r.Option2, r.Option3}
}

// RecordFromValues builds a record from cells in column order. Missing
// trailing cells stay empty and extra cells are ignored.
func RecordFromValues(values []string) Record {
	var r Record
	for i, f := range Fields {
		if i >= len(values) {
			break
		}
		r.Set(f, values[i])
	}
	return r
}

// RecordFromMap builds a record from named values. Unknown names are
// rejected with a ValidationError.
func RecordFromMap(values map[string]string) (Record, error) {
	var r Record
	if err := r.Apply(values); err != nil {
		return Record{}, err
	}
	return r, nil
}

// Apply overwrites the named fields. Nothing is changed when any name is
// unknown.
func (r *Record) Apply(values map[string]string) error {
	resolved := make(map[Field]string, len(values))
	for name, value := range values {
		f, ok := ParseField(name)
		if !ok {
			return &ValidationError{Field: name, Reason: "unknown field"}
		}
		resolved[f] = value
	}
	for f, value := range resolved {
		r.Set(f, value)
	}
	return nil
}

// Entry pairs a record with its identity.
type Entry struct {
	ID     RecordID `json:"id"`
	Record Record   `json:"record"`
}

// View is an ordered projection of the store. Position i of a view maps
// back to the record through view[i].ID.
type View []Entry

// IDs returns the identities in view order.
func (v View) IDs() []RecordID {
	out := make([]RecordID, len(v))
	for i, e := range v {
		out[i] = e.ID
	}
	return out
}

// At resolves a zero-based position. It reports false when pos is out of
// range.
func (v View) At(pos int) (Entry, bool) {
	if pos < 0 || pos >= len(v) {
		return Entry{}, false
	}
	return v[pos], true
}

// Records strips identities, keeping order.
func (v View) Records() []Record {
	out := make([]Record, len(v))
	for i, e := range v {
		out[i] = e.Record
	}
	return out
}

// CloneEntries returns an independent copy of entries.
func CloneEntries(in []Entry) []Entry {
	if in == nil {
		return nil
	}
	out := make([]Entry, len(in))
	copy(out, in)
	return out
}
