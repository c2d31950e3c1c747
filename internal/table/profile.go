package table

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Profile is a markdown-friendly overview of a table's columns.
type Profile struct {
	Name string
	Rows int
	Cols []ColumnSummary
}

// ColumnSummary captures inferred kind and statistics per column.
type ColumnSummary struct {
	Name    string
	Kind    Kind
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min  float64
	Max  float64
	Mean float64
	// Categorical top values
	TopValues []CategoryCount
}

type CategoryCount struct {
	Value string
	Count int
}

// MissingFraction is Missing / (NonNull + Missing), or 0 for an empty column.
func (c ColumnSummary) MissingFraction() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.Missing) / float64(total)
}

// Profile summarizes every column of t.
func (t *Table) Profile() *Profile {
	p := &Profile{Name: t.name, Rows: len(t.rows)}
	schema := t.Schema()
	for j, f := range schema {
		s := ColumnSummary{Name: f.Name, Kind: f.Kind, Min: math.Inf(1), Max: math.Inf(-1)}
		cats := map[string]int{}
		var sum float64
		for _, r := range t.rows {
			v := r[j]
			if v == "" {
				s.Missing++
				continue
			}
			s.NonNull++
			cats[v]++
			if f.Kind == KindNumeric {
				x, _ := ParseNumber(v)
				sum += x
				if x < s.Min {
					s.Min = x
				}
				if x > s.Max {
					s.Max = x
				}
			}
		}
		s.Unique = len(cats)
		if f.Kind == KindNumeric && s.NonNull > 0 {
			s.Mean = sum / float64(s.NonNull)
		} else {
			s.Min, s.Max = 0, 0
		}
		if f.Kind == KindCategorical {
			tops := make([]CategoryCount, 0, len(cats))
			for k, v := range cats {
				tops = append(tops, CategoryCount{Value: k, Count: v})
			}
			sort.Slice(tops, func(i, j int) bool {
				if tops[i].Count == tops[j].Count {
					return tops[i].Value < tops[j].Value
				}
				return tops[i].Count > tops[j].Count
			})
			if len(tops) > 8 {
				tops = tops[:8]
			}
			s.TopValues = tops
		}
		p.Cols = append(p.Cols, s)
	}
	return p
}

// Markdown renders a compact report for the console.
func (p *Profile) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n\n", len(p.Cols)))

	b.WriteString("[SCHEMA]\n")
	for _, c := range p.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", safeName(c.Name), c.Kind, c.NonNull, c.MissingFraction()*100))
		switch c.Kind {
		case KindNumeric:
			b.WriteString(fmt.Sprintf(" — min %.4g, max %.4g, mean %.4g", c.Min, c.Max, c.Mean))
		case KindCategorical:
			if len(c.TopValues) > 0 {
				b.WriteString(" — top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
