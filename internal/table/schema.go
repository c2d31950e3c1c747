package table

// Kind is the inferred type of a column.
type Kind string

const (
	KindNumeric     Kind = "numeric"
	KindCategorical Kind = "categorical"
	KindEmpty       Kind = "empty"
)

// Field describes one column of a Table.
type Field struct {
	Name string
	Kind Kind
}

// Schema is the ordered list of fields present in a Table.
type Schema []Field

// Lookup returns the field named name. Table.Has answers plain presence
// checks without inferring kinds.
func (s Schema) Lookup(name string) (Field, bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Names lists the field names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Schema infers each column's kind: numeric when every non-missing cell
// parses as a number, empty when no cell is present, categorical otherwise.
func (t *Table) Schema() Schema {
	s := make(Schema, len(t.cols))
	for j, c := range t.cols {
		present, numeric := 0, 0
		for _, r := range t.rows {
			if r[j] == "" {
				continue
			}
			present++
			if _, ok := ParseNumber(r[j]); ok {
				numeric++
			}
		}
		kind := KindCategorical
		switch {
		case present == 0:
			kind = KindEmpty
		case numeric == present:
			kind = KindNumeric
		}
		s[j] = Field{Name: c, Kind: kind}
	}
	return s
}
