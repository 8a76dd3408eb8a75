package rdfio

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
)

// JSONLDCodec reads and writes compacted JSON-LD documents in the
// "expanded IRI" shape this core favors: no @context-driven term mapping,
// just @id/@type plus predicate-keyed values. An inbound document's
// @context is not resolved: this codec does not call the profile cache
// (internal/rdfio/profilecache), and no other step of the read path does.
type JSONLDCodec struct{}

type jsonldNode struct {
	ID         string                     `json:"@id,omitempty"`
	Type       []string                   `json:"@type,omitempty"`
	Properties map[string][]jsonldLiteral `json:"-"`
}

type jsonldLiteral struct {
	Value    any    `json:"@value,omitempty"`
	ID       string `json:"@id,omitempty"`
	Type     string `json:"@type,omitempty"`
	Language string `json:"@language,omitempty"`
}

func (JSONLDCodec) Read(data []byte, contextURL string) ([]rdf.Triple, error) {
	parsed := gjson.ParseBytes(data)
	var nodes []gjson.Result
	if parsed.IsArray() {
		nodes = parsed.Array()
	} else if graph := parsed.Get("@graph"); graph.Exists() {
		nodes = graph.Array()
	} else {
		nodes = []gjson.Result{parsed}
	}

	var out []rdf.Triple
	for _, node := range nodes {
		subjectIRI := node.Get("@id").String()
		if subjectIRI == "" {
			continue
		}
		subject := resolveTerm(rdf.NewIRITerm(subjectIRI), contextURL)
		typeField := node.Get("@type")
		types := typeField.Array()
		if !typeField.IsArray() && typeField.Exists() {
			types = []gjson.Result{typeField}
		}
		for _, typ := range types {
			out = append(out, rdf.Triple{Subject: subject, Predicate: rdf.NewIRITerm(rdf.RDFType), Object: resolveTerm(rdf.NewIRITerm(typ.String()), contextURL)})
		}
		node.ForEach(func(key, value gjson.Result) bool {
			predIRI := key.String()
			if strings.HasPrefix(predIRI, "@") {
				return true
			}
			if !value.IsArray() {
				value = gjson.Parse("[" + value.Raw + "]")
			}
			for _, v := range value.Array() {
				obj, err := jsonValueToTerm(v)
				if err != nil {
					continue
				}
				out = append(out, rdf.Triple{Subject: subject, Predicate: resolveTerm(rdf.NewIRITerm(predIRI), contextURL), Object: resolveTerm(obj, contextURL)})
			}
			return true
		})
	}
	return out, nil
}

func jsonValueToTerm(v gjson.Result) (rdf.Term, error) {
	if id := v.Get("@id"); id.Exists() {
		return rdf.NewIRITerm(id.String()), nil
	}
	if val := v.Get("@value"); val.Exists() {
		datatype := v.Get("@type").String()
		lang := v.Get("@language").String()
		if datatype == "" && lang == "" {
			datatype = rdf.XSDString
		}
		return rdf.NewLiteralTerm(val.String(), datatype, lang), nil
	}
	switch v.Type {
	case gjson.String:
		return rdf.NewLiteralTerm(v.String(), rdf.XSDString, ""), nil
	case gjson.Number:
		return rdf.NewLiteralTerm(v.Raw, "http://www.w3.org/2001/XMLSchema#double", ""), nil
	case gjson.True, gjson.False:
		return rdf.NewLiteralTerm(v.Raw, "http://www.w3.org/2001/XMLSchema#boolean", ""), nil
	default:
		return rdf.Term{}, ldperrors.ErrRDFParse(string(JSONLD), fmt.Errorf("unsupported value %q", v.Raw))
	}
}

func (JSONLDCodec) Write(triples []rdf.Triple, contextURL string) ([]byte, error) {
	order := make([]string, 0)
	bySubject := make(map[string]*jsonldNode)
	for _, t := range triples {
		key := t.Subject.String()
		node, ok := bySubject[key]
		if !ok {
			node = &jsonldNode{Properties: map[string][]jsonldLiteral{}}
			if t.Subject.IsIRI() {
				node.ID = t.Subject.Value
			} else {
				node.ID = "_:" + t.Subject.Value
			}
			bySubject[key] = node
			order = append(order, key)
		}
		if t.Predicate.IsIRI() && t.Predicate.Value == rdf.RDFType && t.Object.IsIRI() {
			node.Type = append(node.Type, t.Object.Value)
			continue
		}
		node.Properties[t.Predicate.Value] = append(node.Properties[t.Predicate.Value], termToLiteral(t.Object))
	}

	docs := make([]map[string]any, 0, len(order))
	for _, key := range order {
		node := bySubject[key]
		doc := map[string]any{"@id": node.ID}
		if len(node.Type) > 0 {
			doc["@type"] = node.Type
		}
		for pred, values := range node.Properties {
			doc[pred] = values
		}
		docs = append(docs, doc)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return nil, ldperrors.ErrRDFParse(string(JSONLD), fmt.Errorf("encoding: %w", err))
	}
	return buf.Bytes(), nil
}

func termToLiteral(t rdf.Term) jsonldLiteral {
	if t.IsIRI() {
		return jsonldLiteral{ID: t.Value}
	}
	if t.IsBlankNode() {
		return jsonldLiteral{ID: "_:" + t.Value}
	}
	return jsonldLiteral{Value: t.Value, Type: t.Datatype, Language: t.Language}
}
