package core

import (
	"strings"

	"golang.org/x/text/cases"

	"quizbank/pkg/domain"
)

type criterion struct {
	field   domain.Field
	pattern string
}

// Filter returns the records matching every criterion, in store order. A
// criterion matches when its pattern is a case-insensitive substring of
// the field. Unknown field names and empty patterns are ignored, so an
// empty criteria map returns the whole store.
func (b *Bank) Filter(criteria map[string]string) domain.View {
	folder := cases.Fold()
	var cs []criterion
	for name, pattern := range criteria {
		f, ok := domain.ParseField(name)
		if !ok || pattern == "" {
			continue
		}
		cs = append(cs, criterion{field: f, pattern: folder.String(pattern)})
	}

	out := make(domain.View, 0, len(b.entries))
	for _, e := range b.entries {
		if matchesAll(folder, e.Record, cs) {
			out = append(out, e)
		}
	}
	return out
}

// Search returns the records where text is a case-insensitive substring
// of at least one field, in store order. Empty text matches everything.
func (b *Bank) Search(text string) domain.View {
	folder := cases.Fold()
	needle := folder.String(text)
	out := make(domain.View, 0, len(b.entries))
	for _, e := range b.entries {
		if needle == "" || matchesAny(folder, e.Record, needle) {
			out = append(out, e)
		}
	}
	return out
}

func matchesAll(folder cases.Caser, r domain.Record, cs []criterion) bool {
	for _, c := range cs {
		if !strings.Contains(folder.String(r.Get(c.field)), c.pattern) {
			return false
		}
	}
	return true
}

func matchesAny(folder cases.Caser, r domain.Record, needle string) bool {
	for _, f := range domain.Fields {
		if strings.Contains(folder.String(r.Get(f)), needle) {
			return true
		}
	}
	return false
}
