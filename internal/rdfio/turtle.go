package rdfio

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// TurtleCodec reads and writes a practical subset of Turtle: @prefix
// declarations, one triple per line terminated by " .", and the "a"
// shorthand for rdf:type. It does not support predicate-object lists,
// collections, or nested blank node syntax; those never appear in the
// server-managed and user graphs this core round-trips.
type TurtleCodec struct {
	Prefixes map[string]string // prefix -> namespace IRI, used when writing
}

func NewTurtleCodec(prefixes map[string]string) *TurtleCodec {
	return &TurtleCodec{Prefixes: prefixes}
}

func (c *TurtleCodec) Read(data []byte, contextURL string) ([]rdf.Triple, error) {
	prefixes := map[string]string{}
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
		if strings.HasPrefix(line, "@prefix") {
			p, ns, err := parsePrefixDirective(line)
			if err != nil {
				return nil, ldperrors.ErrRDFParse(string(Turtle), fmt.Errorf("line %d: %w", lineNo, err))
			}
			prefixes[p] = ns
			continue
		}
		line = strings.TrimSuffix(strings.TrimSpace(line), ".")
		s, predAndObj, err := splitTerm(strings.TrimSpace(line))
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(Turtle), fmt.Errorf("line %d: %w", lineNo, err))
		}
		p, objStr, err := splitTerm(strings.TrimSpace(predAndObj))
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(Turtle), fmt.Errorf("line %d: %w", lineNo, err))
		}
		subj, err := parseTurtleTerm(s, prefixes)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(Turtle), fmt.Errorf("line %d: %w", lineNo, err))
		}
		pred, err := parseTurtleTerm(p, prefixes)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(Turtle), fmt.Errorf("line %d: %w", lineNo, err))
		}
		obj, err := parseTurtleTerm(strings.TrimSpace(objStr), prefixes)
		if err != nil {
			return nil, ldperrors.ErrRDFParse(string(Turtle), fmt.Errorf("line %d: %w", lineNo, err))
		}
		out = append(out, rdf.Triple{
			Subject:   resolveTerm(subj, contextURL),
			Predicate: resolveTerm(pred, contextURL),
			Object:    resolveTerm(obj, contextURL),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, ldperrors.ErrRDFParse(string(Turtle), err)
	}
	return out, nil
}

func (c *TurtleCodec) Write(triples []rdf.Triple, contextURL string) ([]byte, error) {
	var buf bytes.Buffer
	prefixNames := make([]string, 0, len(c.Prefixes))
	for p := range c.Prefixes {
		prefixNames = append(prefixNames, p)
	}
	sort.Strings(prefixNames)
	for _, p := range prefixNames {
		fmt.Fprintf(&buf, "@prefix %s: <%s> .\n", p, c.Prefixes[p])
	}
	if len(prefixNames) > 0 {
		buf.WriteByte('\n')
	}
	for _, t := range triples {
		buf.WriteString(c.compact(t.Subject))
		buf.WriteByte(' ')
		if t.Predicate.IsIRI() && t.Predicate.Value == rdf.RDFType {
			buf.WriteString("a")
		} else {
			buf.WriteString(c.compact(t.Predicate))
		}
		buf.WriteByte(' ')
		buf.WriteString(c.compact(t.Object))
		buf.WriteString(" .\n")
	}
	return buf.Bytes(), nil
}

func (c *TurtleCodec) compact(t rdf.Term) string {
	if t.IsIRI() {
		for prefix, ns := range c.Prefixes {
			if strings.HasPrefix(t.Value, ns) && len(t.Value) > len(ns) {
				return prefix + ":" + t.Value[len(ns):]
			}
		}
	}
	return writeTerm(t)
}

func parsePrefixDirective(line string) (prefix, namespace string, err error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return "", "", fmt.Errorf("malformed @prefix directive %q", line)
	}
	prefix = strings.TrimSuffix(fields[1], ":")
	ns := strings.TrimSuffix(fields[2], ".")
	ns = strings.TrimSpace(ns)
	if !strings.HasPrefix(ns, "<") || !strings.HasSuffix(ns, ">") {
		return "", "", fmt.Errorf("malformed namespace in %q", line)
	}
	return prefix, ns[1 : len(ns)-1], nil
}

func parseTurtleTerm(s string, prefixes map[string]string) (rdf.Term, error) {
	s = strings.TrimSpace(s)
	if s == "a" {
		return rdf.NewIRITerm(rdf.RDFType), nil
	}
	if idx := strings.IndexByte(s, ':'); idx > 0 && !strings.HasPrefix(s, "<") && !strings.HasPrefix(s, "\"") && !strings.HasPrefix(s, "_:") {
		prefix, local := s[:idx], s[idx+1:]
		if ns, ok := prefixes[prefix]; ok {
			return rdf.NewIRITerm(ns + local), nil
		}
	}
	return parseTerm(s)
}
