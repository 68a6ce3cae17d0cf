package veranstalter

import (
	"fmt"
	"strings"
)

// assignments collects the SET clause of an UPDATE with numbered parameters.
type assignments struct {
	clauses []string
	args    []any
}

func (a *assignments) raw(clause string) {
	a.clauses = append(a.clauses, clause)
}

func (a *assignments) value(column string, v any) {
	a.args = append(a.args, v)
	a.clauses = append(a.clauses, fmt.Sprintf("%s = $%d", column, len(a.args)))
}

func (a *assignments) empty() bool {
	return len(a.clauses) == 0
}

// update renders UPDATE table SET ... WHERE key = $n followed by suffix.
func (a *assignments) update(table, key string, id any, suffix string) (string, []any) {
	args := append(a.args, id)
	q := fmt.Sprintf(
		"UPDATE %s SET %s WHERE %s = $%d",
		table,
		strings.Join(a.clauses, ", "),
		key,
		len(args),
	)
	if suffix != "" {
		q += " " + suffix
	}
	return q, args
}

func assign[T any](a *assignments, column string, f Field[T]) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		a.value(column, nil)
		return
	}
	a.value(column, *f.Value)
}

func patchAssignments(p Patch) *assignments {
	a := &assignments{}
	assign(a, "name", p.Name)
	assign(a, "email", p.Email)
	assign(a, "telefon", p.Telefon)
	assign(a, "homepage", p.Homepage)
	assign(a, "gruendungsdatum", p.Gruendungsdatum)
	assign(a, "bewertung", p.Bewertung)
	assign(a, "aktiv", p.Aktiv)
	if p.Art.Set {
		a.value("art", artValue(p.Art.Value))
	}
	if p.Kategorien.Set {
		var k []string
		if p.Kategorien.Value != nil {
			k = *p.Kategorien.Value
		}
		a.value("kategorien", kategorienValue(k))
	}
	return a
}

func standortAssignments(p StandortPatch) *assignments {
	a := &assignments{}
	assign(a, "ort", p.Ort)
	assign(a, "plz", p.Plz)
	assign(a, "strasse", p.Strasse)
	assign(a, "land", p.Land)
	assign(a, "details", p.Details)
	return a
}
