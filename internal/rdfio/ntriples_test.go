package rdfio

import "testing"

func TestNTriplesRoundTrip(t *testing.T) {
	src := `<http://example.org/s> <http://example.org/p> "hello" .
<http://example.org/s> <http://example.org/p2> <http://example.org/o> .
`
	codec := NTriplesCodec{}
	triples, err := codec.Read([]byte(src), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(triples) != 2 {
		t.Fatalf("expected 2 triples, got %d", len(triples))
	}
	if triples[0].Object.Value != "hello" {
		t.Fatalf("expected literal value %q, got %q", "hello", triples[0].Object.Value)
	}

	out, err := codec.Write(triples, "")
	if err != nil {
		t.Fatalf("unexpected error serializing: %v", err)
	}
	reparsed, err := codec.Read(out, "")
	if err != nil {
		t.Fatalf("unexpected error reparsing: %v", err)
	}
	if len(reparsed) != len(triples) {
		t.Fatalf("round trip lost triples: got %d, want %d", len(reparsed), len(triples))
	}
}

func TestNTriplesLiteralWithLanguageTag(t *testing.T) {
	src := `<http://example.org/s> <http://example.org/p> "bonjour"@fr .` + "\n"
	triples, err := (NTriplesCodec{}).Read([]byte(src), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if triples[0].Object.Language != "fr" {
		t.Fatalf("expected language tag fr, got %q", triples[0].Object.Language)
	}
}

func TestNTriplesLiteralWithDatatype(t *testing.T) {
	src := `<http://example.org/s> <http://example.org/p> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .` + "\n"
	triples, err := (NTriplesCodec{}).Read([]byte(src), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if triples[0].Object.Datatype != "http://www.w3.org/2001/XMLSchema#integer" {
		t.Fatalf("expected xsd:integer datatype, got %q", triples[0].Object.Datatype)
	}
}
