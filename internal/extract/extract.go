// Package extract finds static import declarations in source text.
//
// Extraction is lexical: it looks for the shape
//
//	import <names> from <specifier>;
//
// anywhere in the text, after line breaks are folded into spaces so that
// statements spanning several lines are found. Dynamic import() calls and
// side-effect-only imports without a from clause are not matched.
package extract

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

var (
	statementPattern = regexp.MustCompile(`(?i)import\s+.*?\s+from\s+.*?;`)
	clausePattern    = regexp.MustCompile(`(?i)import\b(.*?)\bfrom\b['"\x60\s]*(.*?)['"\x60\s]*;`)

	lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")
)

// ParseError reports a raw statement that does not split into a names
// clause and a specifier clause.
type ParseError struct {
	Statement string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed import statement: %q", e.Statement)
}

// Statement is the decomposed form of one raw import statement.
type Statement struct {
	Imports   []string // bound names, braces removed, trimmed
	Specifier string   // source specifier without quotes
}

// Statements yields every raw import statement in text, in file order.
func Statements(text string) iter.Seq[string] {
	flat := lineBreaks.Replace(text)
	return func(yield func(string) bool) {
		rest := flat
		for {
			loc := statementPattern.FindStringIndex(rest)
			if loc == nil {
				return
			}
			if !yield(rest[loc[0]:loc[1]]) {
				return
			}
			rest = rest[loc[1]:]
		}
	}
}

// Parse splits a raw statement produced by Statements.
func Parse(raw string) (Statement, error) {
	m := clausePattern.FindStringSubmatch(raw)
	if m == nil {
		return Statement{}, &ParseError{Statement: raw}
	}

	names := strings.NewReplacer("{", "", "}", "").Replace(m[1])
	parts := strings.Split(names, ",")
	imports := make([]string, 0, len(parts))
	for _, p := range parts {
		imports = append(imports, strings.TrimSpace(p))
	}

	return Statement{
		Imports:   imports,
		Specifier: m[2],
	}, nil
}
