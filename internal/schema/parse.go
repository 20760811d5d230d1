package schema

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// SchemaSyntaxError reports DDL text that holds no usable CREATE TABLE
// statement. It is fatal: no partial schema is returned with it.
type SchemaSyntaxError struct {
	Msg string
}

func (e *SchemaSyntaxError) Error() string {
	return "schema syntax error: " + e.Msg
}

// ParseFile reads a DDL file and extracts its table definition.
func ParseFile(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema file: %w", err)
	}
	return Extract(string(data))
}

var createTableRe = regexp.MustCompile(`(?is)\bCREATE\s+(?:OR\s+REPLACE\s+)?(?:(?:GLOBAL|LOCAL)\s+)?(?:(?:TEMP|TEMPORARY|UNLOGGED)\s+)?TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?` +
	`((?:(?:` + identPattern + `)\s*\.\s*)*(?:` + identPattern + `))\s*\(`)

const identPattern = "`[^`]+`" + `|"[^"]+"|\[[^\]]+\]|[\w$]+`

// Extract locates the first CREATE TABLE statement in text and returns its
// columns in source order.
func Extract(text string) (*Schema, error) {
	loc := createTableRe.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, &SchemaSyntaxError{Msg: "no CREATE TABLE statement found"}
	}
	table := tableName(text[loc[2]:loc[3]])
	body, ok := extractParenBlock(text[loc[1]-1:])
	if !ok {
		return nil, &SchemaSyntaxError{Msg: fmt.Sprintf("table %s: unbalanced parentheses in column list", table)}
	}

	var cols []Column
	for _, def := range splitDefinitions(body) {
		if isTableConstraint(def) {
			continue
		}
		if col, ok := parseColumnDef(def); ok {
			cols = append(cols, col)
		}
	}
	return New(table, cols), nil
}

// tableName returns the last component of a possibly qualified identifier.
func tableName(qualified string) string {
	parts := splitTopLevel(qualified, '.')
	return unquoteIdent(strings.TrimSpace(parts[len(parts)-1]))
}

func unquoteIdent(s string) string {
	if len(s) >= 2 {
		switch {
		case s[0] == '`' && s[len(s)-1] == '`',
			s[0] == '"' && s[len(s)-1] == '"',
			s[0] == '[' && s[len(s)-1] == ']':
			return s[1 : len(s)-1]
		}
	}
	return s
}

// extractParenBlock returns the text inside the parenthesis that opens s,
// up to its matching close. Quoted literals and identifiers are skipped.
func extractParenBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '(')
	if start == -1 {
		return "", false
	}
	depth := 0
	var quote byte
	for i := start; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i], true
			}
		case '-':
			// a line comment may hold unbalanced parentheses
			if i+1 < len(s) && s[i+1] == '-' {
				if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
					i += nl
				} else {
					i = len(s)
				}
			}
		}
	}
	return "", false
}

var blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)

// splitDefinitions turns the column list into individual definitions.
// Comments are removed line by line, lines are joined while parentheses are
// open, and each logical line is split on top-level commas.
func splitDefinitions(body string) []string {
	body = blockCommentRe.ReplaceAllString(body, " ")

	var defs []string
	var pending strings.Builder
	flush := func() {
		for _, part := range splitTopLevel(pending.String(), ',') {
			if part = strings.TrimSpace(part); part != "" {
				defs = append(defs, part)
			}
		}
		pending.Reset()
	}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(stripLineComment(line))
		if line == "" {
			continue
		}
		if pending.Len() > 0 {
			pending.WriteByte(' ')
		}
		pending.WriteString(line)
		if parenDepth(pending.String()) <= 0 {
			flush()
		}
	}
	flush()
	return defs
}

// stripLineComment cuts a "--" or "#" comment that starts outside quotes.
func stripLineComment(line string) string {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '#':
			return line[:i]
		case '-':
			if i+1 < len(line) && line[i+1] == '-' {
				return line[:i]
			}
		}
	}
	return line
}

func parenDepth(s string) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(':
			depth++
		case ')':
			depth--
		}
	}
	return depth
}

// splitTopLevel splits s on sep outside parentheses and quotes.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	var cur strings.Builder
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			cur.WriteByte(c)
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '[':
			quote = ']'
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, cur.String())
				cur.Reset()
				continue
			}
		}
		cur.WriteByte(c)
	}
	parts = append(parts, cur.String())
	return parts
}

// constraintRe matches table-level clauses. Keywords that are also valid
// column names (period, exclude) only match in their clause form.
var constraintRe = regexp.MustCompile(`(?i)^(?:` +
	`(?:PRIMARY\s+KEY|FOREIGN\s+KEY|CONSTRAINT|KEY|INDEX)\b` +
	`|CHECK\s*\(` +
	`|UNIQUE\s*(?:KEY\b|INDEX\b|\()` +
	`|(?:FULLTEXT|SPATIAL)\s+(?:KEY|INDEX)\b` +
	`|EXCLUDE\s+(?:USING\b|\()` +
	`|PERIOD\s+FOR\b` +
	`)`)

func isTableConstraint(def string) bool {
	return constraintRe.MatchString(def)
}

var colDefRe = regexp.MustCompile(`^(` + identPattern + `)\s+(.*)$`)

var (
	notNullRe      = regexp.MustCompile(`(?i)\bNOT\s+NULL\b`)
	primaryKeyRe   = regexp.MustCompile(`(?i)\bPRIMARY\s+KEY\b`)
	autoIncRe      = regexp.MustCompile(`(?i)\bAUTO_?INCREMENT\b`)
	identityGenRe  = regexp.MustCompile(`(?i)\bGENERATED\s+(?:ALWAYS|BY\s+DEFAULT)(?:\s+ON\s+NULL)?\s+AS\s+IDENTITY\b`)
	identityArgsRe = regexp.MustCompile(`(?i)\bIDENTITY\s*\(\s*-?\d+\s*,\s*-?\d+\s*\)`)
)

// parseColumnDef parses one "name type [attributes]" definition.
func parseColumnDef(def string) (Column, bool) {
	m := colDefRe.FindStringSubmatch(strings.TrimSpace(def))
	if m == nil {
		return Column{}, false
	}
	rest := strings.TrimSpace(m[2])
	if rest == "" {
		return Column{}, false
	}

	col := Column{Name: unquoteIdent(m[1]), Nullable: true}
	typeName, spec, ok := matchType(rest)
	if !ok {
		typeName = strings.ToUpper(strings.Fields(rest)[0])
	}
	col.Type = typeName

	attrs := blankLiterals(rest)
	col.Nullable = !notNullRe.MatchString(attrs)
	col.PrimaryKey = primaryKeyRe.MatchString(attrs)
	col.AutoGenerated = spec.Serial ||
		autoIncRe.MatchString(attrs) ||
		identityGenRe.MatchString(attrs) ||
		identityArgsRe.MatchString(attrs)
	return col, true
}

// blankLiterals replaces the contents of single-quoted literals so keyword
// matching does not see DEFAULT 'NOT NULL' and the like.
func blankLiterals(s string) string {
	b := []byte(s)
	in := false
	for i, c := range b {
		if c == '\'' {
			in = !in
			continue
		}
		if in {
			b[i] = ' '
		}
	}
	return string(b)
}
