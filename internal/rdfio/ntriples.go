package rdfio

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// NTriplesCodec reads and writes W3C N-Triples (a line-oriented subset of
// Turtle with no prefixes and no relative IRIs), the canonical "dumbest
// possible" RDF syntax this core uses for audit exports and fixtures.
type NTriplesCodec struct{}

func (NTriplesCodec) Read(data []byte, contextURL string) ([]rdf.Triple, error) {
	var out []rdf.Triple
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(line, ".")
		line = strings.TrimSpace(line)
		s, predAndObj, err := splitTerm(line)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(NTriples), fmt.Errorf("line %d: %w", lineNo, err))
		}
		p, objStr, err := splitTerm(predAndObj)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(NTriples), fmt.Errorf("line %d: %w", lineNo, err))
		}
		o, err := parseTerm(strings.TrimSpace(objStr))
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(NTriples), fmt.Errorf("line %d: %w", lineNo, err))
		}
		subj, err := parseTerm(s)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(NTriples), fmt.Errorf("line %d: %w", lineNo, err))
		}
		pred, err := parseTerm(p)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(NTriples), fmt.Errorf("line %d: %w", lineNo, err))
		}
		out = append(out, rdf.Triple{Subject: resolveTerm(subj, contextURL), Predicate: resolveTerm(pred, contextURL), Object: resolveTerm(o, contextURL)})
	}
	if err := scanner.Err(); err != nil {
		return nil, ldperrors.ErrRDFParse(string(NTriples), err)
	}
	return out, nil
}

func (NTriplesCodec) Write(triples []rdf.Triple, contextURL string) ([]byte, error) {
	var buf bytes.Buffer
	for _, t := range triples {
		buf.WriteString(writeTerm(t.Subject))
		buf.WriteByte(' ')
		buf.WriteString(writeTerm(t.Predicate))
		buf.WriteByte(' ')
		buf.WriteString(writeTerm(t.Object))
		buf.WriteString(" .\n")
	}
	return buf.Bytes(), nil
}

// splitTerm splits "term rest" on the first unquoted, unbracketed space.
func splitTerm(s string) (term string, rest string, err error) {
	depth := 0
	inLiteral := false
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			if i == 0 || s[i-1] != '\\' {
				inLiteral = !inLiteral
			}
		case '<':
			if !inLiteral {
				depth++
			}
		case '>':
			if !inLiteral {
				depth--
			}
		case ' ':
			if !inLiteral && depth == 0 {
				return s[:i], s[i+1:], nil
			}
		}
	}
	return "", "", fmt.Errorf("unterminated term in %q", s)
}

func parseTerm(s string) (rdf.Term, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"):
		return rdf.NewIRITerm(s[1 : len(s)-1]), nil
	case strings.HasPrefix(s, "_:"):
		return rdf.NewBlankNodeTerm(s[2:]), nil
	case strings.HasPrefix(s, "\""):
		return parseLiteral(s)
	default:
		return rdf.Term{}, fmt.Errorf("unrecognized term %q", s)
	}
}

func parseLiteral(s string) (rdf.Term, error) {
	end := strings.LastIndexByte(s, '"')
	if end <= 0 {
		return rdf.Term{}, fmt.Errorf("malformed literal %q", s)
	}
	lexical := unescapeNTriples(s[1:end])
	suffix := s[end+1:]
	switch {
	case strings.HasPrefix(suffix, "^^<") && strings.HasSuffix(suffix, ">"):
		return rdf.NewLiteralTerm(lexical, suffix[3:len(suffix)-1], ""), nil
	case strings.HasPrefix(suffix, "@"):
		return rdf.NewLiteralTerm(lexical, "", suffix[1:]), nil
	default:
		return rdf.NewLiteralTerm(lexical, rdf.XSDString, ""), nil
	}
}

func unescapeNTriples(s string) string {
	replacer := strings.NewReplacer(`\"`, `"`, `\\`, `\`, `\n`, "\n", `\r`, "\r", `\t`, "\t")
	return replacer.Replace(s)
}

func escapeNTriples(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return replacer.Replace(s)
}

func writeTerm(t rdf.Term) string {
	switch t.Kind {
	case rdf.KindIRI:
		return "<" + t.Value + ">"
	case rdf.KindBlankNode:
		return "_:" + t.Value
	case rdf.KindLiteral:
		lit := fmt.Sprintf("%q", t.Value)
		lit = `"` + escapeNTriples(t.Value) + `"`
		switch {
		case t.Language != "":
			return lit + "@" + t.Language
		case t.Datatype != "" && t.Datatype != rdf.XSDString:
			return lit + "^^<" + t.Datatype + ">"
		default:
			return lit
		}
	default:
		return ""
	}
}

// resolveTerm leaves absolute IRIs untouched; relative IRIs (never produced
// by this codec, but accepted defensively from hand-edited fixtures) are
// resolved against contextURL.
func resolveTerm(t rdf.Term, contextURL string) rdf.Term {
	if !t.IsIRI() || contextURL == "" {
		return t
	}
	if err := rdf.ValidateIRI(t.Value); err == nil {
		return t
	}
	return rdf.NewIRITerm(strings.TrimSuffix(contextURL, "/") + "/" + strings.TrimPrefix(t.Value, "/"))
}
