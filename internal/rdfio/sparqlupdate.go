package rdfio

import (
	"fmt"
	"strings"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// UpdatePatch is the parsed effect of a SPARQL-1.1 Update request (the
// INSERT/DELETE DATA subset): triples to delete and triples to insert,
// applied atomically over a resource's user graph.
type UpdatePatch struct {
	Delete []rdf.Triple
	Insert []rdf.Triple
}

// ParseUpdate parses INSERT DATA, DELETE DATA, and DELETE {...} INSERT
// {...} WHERE {...} forms. A WHERE clause, when present, is only checked
// for a well-formed braced block; its content is not evaluated and not
// compared with the DELETE template, and the DELETE and INSERT templates
// are applied exactly as written. It does not support
// variable bindings, FILTER, or OPTIONAL; those never appear in the
// patches this core's PATCH operation receives from compliant clients.
func ParseUpdate(query string, subject rdf.Term, contextURL string) (UpdatePatch, error) {
	patch, err := parseUpdate(query, subject, contextURL)
	if err != nil {
		return UpdatePatch{}, ldperrors.ErrRDFParse("sparql-update", err)
	}
	return patch, nil
}

func parseUpdate(query string, subject rdf.Term, contextURL string) (UpdatePatch, error) {
	query = strings.TrimSpace(query)
	upper := strings.ToUpper(query)

	switch {
	case strings.HasPrefix(upper, "INSERT DATA"):
		block, err := bracedBlock(query, "INSERT DATA")
		if err != nil {
			return UpdatePatch{}, err
		}
		triples, err := parseTripleBlock(block, subject, contextURL)
		if err != nil {
			return UpdatePatch{}, err
		}
		return UpdatePatch{Insert: triples}, nil

	case strings.HasPrefix(upper, "DELETE DATA"):
		block, err := bracedBlock(query, "DELETE DATA")
		if err != nil {
			return UpdatePatch{}, err
		}
		triples, err := parseTripleBlock(block, subject, contextURL)
		if err != nil {
			return UpdatePatch{}, err
		}
		return UpdatePatch{Delete: triples}, nil

	case strings.HasPrefix(upper, "DELETE"):
		return parseDeleteInsertWhere(query, subject, contextURL)

	default:
		return UpdatePatch{}, fmt.Errorf("unsupported SPARQL Update form %q", firstWord(query))
	}
}

func parseDeleteInsertWhere(query string, subject rdf.Term, contextURL string) (UpdatePatch, error) {
	deleteBlock, rest, err := extractBlock(query, "DELETE")
	if err != nil {
		return UpdatePatch{}, err
	}
	deleteTriples, err := parseTripleBlock(deleteBlock, subject, contextURL)
	if err != nil {
		return UpdatePatch{}, err
	}

	var insertTriples []rdf.Triple
	trimmed := strings.TrimSpace(rest)
	if strings.HasPrefix(strings.ToUpper(trimmed), "INSERT") {
		insertBlock, after, err := extractBlock(trimmed, "INSERT")
		if err != nil {
			return UpdatePatch{}, err
		}
		insertTriples, err = parseTripleBlock(insertBlock, subject, contextURL)
		if err != nil {
			return UpdatePatch{}, err
		}
		rest = after
	}

	// A WHERE clause is only checked for a well-formed braced block; its
	// content is ignored (see doc comment above).
	if strings.Contains(strings.ToUpper(rest), "WHERE") {
		if _, _, err := extractBlock(rest, "WHERE"); err != nil {
			return UpdatePatch{}, err
		}
	}

	return UpdatePatch{Delete: deleteTriples, Insert: insertTriples}, nil
}

func bracedBlock(query, keyword string) (string, error) {
	block, _, err := extractBlock(query, keyword)
	return block, err
}

// extractBlock finds keyword, then the balanced {...} block following it,
// and returns the block's contents plus whatever text follows the block.
func extractBlock(query, keyword string) (block string, rest string, err error) {
	upper := strings.ToUpper(query)
	idx := strings.Index(upper, strings.ToUpper(keyword))
	if idx < 0 {
		return "", "", fmt.Errorf("rdfio: expected %s clause", keyword)
	}
	open := strings.IndexByte(query[idx:], '{')
	if open < 0 {
		return "", "", fmt.Errorf("rdfio: %s clause missing '{'", keyword)
	}
	open += idx
	depth := 0
	for i := open; i < len(query); i++ {
		switch query[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return query[open+1 : i], query[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("rdfio: unbalanced braces in %s clause", keyword)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}

// parseTripleBlock parses a sequence of "s p o ." lines using the same
// term grammar as the Turtle codec, with "a" for rdf:type accepted.
func parseTripleBlock(block string, defaultSubject rdf.Term, contextURL string) ([]rdf.Triple, error) {
	var out []rdf.Triple
	for _, stmt := range splitStatements(block) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		s, predAndObj, err := splitTerm(stmt)
		if err != nil {
			return nil, fmt.Errorf("rdfio: malformed triple %q: %w", stmt, err)
		}
		p, objStr, err := splitTerm(strings.TrimSpace(predAndObj))
		if err != nil {
			return nil, fmt.Errorf("rdfio: malformed triple %q: %w", stmt, err)
		}
		subj, err := parseTurtleTerm(s, nil)
		if err != nil {
			return nil, err
		}
		pred, err := parseTurtleTerm(p, nil)
		if err != nil {
			return nil, err
		}
		obj, err := parseTurtleTerm(strings.TrimSpace(objStr), nil)
		if err != nil {
			return nil, err
		}
		out = append(out, rdf.Triple{
			Subject:   resolveTerm(subj, contextURL),
			Predicate: resolveTerm(pred, contextURL),
			Object:    resolveTerm(obj, contextURL),
		})
	}
	return out, nil
}

// splitStatements splits a triple block on '.' terminators, respecting
// quoted literals so a '.' inside a string is not mistaken for a
// statement boundary.
func splitStatements(block string) []string {
	var stmts []string
	var cur strings.Builder
	inLiteral := false
	for i := 0; i < len(block); i++ {
		c := block[i]
		if c == '"' && (i == 0 || block[i-1] != '\\') {
			inLiteral = !inLiteral
		}
		if c == '.' && !inLiteral {
			stmts = append(stmts, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteByte(c)
	}
	if strings.TrimSpace(cur.String()) != "" {
		stmts = append(stmts, cur.String())
	}
	return stmts
}
