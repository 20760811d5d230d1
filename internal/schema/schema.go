package schema

import "fmt"

// Schema is the column model recovered from one table definition.
// It is built once and not mutated afterwards.
type Schema struct {
	Table   string
	Columns []Column

	byName map[string]int
}

// Column represents one table column as declared in the DDL.
type Column struct {
	Name          string
	Type          string // normalized uppercase token, parameters verbatim: VARCHAR(100), DECIMAL(10,2)
	Nullable      bool
	AutoGenerated bool // AUTO_INCREMENT, SERIAL, IDENTITY ...
	PrimaryKey    bool // inline PRIMARY KEY; informational only
}

// Spec returns the parsed form of the column's declared type.
func (c Column) Spec() TypeSpec {
	return ParseType(c.Type)
}

func (c Column) String() string {
	null := "NULL"
	if !c.Nullable {
		null = "NOT NULL"
	}
	s := fmt.Sprintf("%s %s %s", c.Name, c.Type, null)
	if c.AutoGenerated {
		s += " (auto-generated)"
	}
	return s
}

// New builds a Schema from columns in source order. A repeated name keeps
// the position of its first occurrence and takes the later definition.
func New(table string, cols []Column) *Schema {
	s := &Schema{Table: table, byName: make(map[string]int, len(cols))}
	for _, c := range cols {
		if i, ok := s.byName[c.Name]; ok {
			s.Columns[i] = c
			continue
		}
		s.byName[c.Name] = len(s.Columns)
		s.Columns = append(s.Columns, c)
	}
	return s
}

// Column returns the descriptor for name (exact, case-sensitive match).
func (s *Schema) Column(name string) (Column, bool) {
	i, ok := s.byName[name]
	if !ok {
		return Column{}, false
	}
	return s.Columns[i], true
}

// Names returns the column names in schema order.
func (s *Schema) Names() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c.Name)
	}
	return out
}

// Len is the number of distinct columns.
func (s *Schema) Len() int { return len(s.Columns) }
