package rdf

// Quad is (graphName?, subject, predicate, object). A Quad whose GraphName
// is the zero Term belongs to the default graph.
type Quad struct {
	GraphName Term
	Subject   Term
	Predicate Term
	Object    Term
}

// HasGraph reports whether q is scoped to a named graph rather than the
// default graph.
func (q Quad) HasGraph() bool { return q.GraphName.Value != "" }

// Triple drops the graph component of a Quad.
type Triple struct {
	Subject   Term
	Predicate Term
	Object    Term
}

func (q Quad) Triple() Triple {
	return Triple{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}
}

// QuadSet is an ordered, de-duplicated collection of quads. Order of first
// insertion is preserved, which the resource service relies on when
// concatenating mutable-then-immutable quad streams.
type QuadSet struct {
	order []Quad
	seen  map[Quad]struct{}
}

func NewQuadSet(quads ...Quad) *QuadSet {
	qs := &QuadSet{seen: make(map[Quad]struct{}, len(quads))}
	for _, q := range quads {
		qs.Add(q)
	}
	return qs
}

// Add appends q if not already present. Returns true if it was added.
func (qs *QuadSet) Add(q Quad) bool {
	if qs.seen == nil {
		qs.seen = make(map[Quad]struct{})
	}
	if _, ok := qs.seen[q]; ok {
		return false
	}
	qs.seen[q] = struct{}{}
	qs.order = append(qs.order, q)
	return true
}

// Remove deletes q if present. Returns true if it was removed.
func (qs *QuadSet) Remove(q Quad) bool {
	if _, ok := qs.seen[q]; !ok {
		return false
	}
	delete(qs.seen, q)
	for i, existing := range qs.order {
		if existing == q {
			qs.order = append(qs.order[:i], qs.order[i+1:]...)
			break
		}
	}
	return true
}

func (qs *QuadSet) Contains(q Quad) bool {
	_, ok := qs.seen[q]
	return ok
}

func (qs *QuadSet) Quads() []Quad {
	out := make([]Quad, len(qs.order))
	copy(out, qs.order)
	return out
}

func (qs *QuadSet) Len() int { return len(qs.order) }

// InGraph returns the subset of quads scoped to graphName.
func (qs *QuadSet) InGraph(graphName string) []Quad {
	var out []Quad
	for _, q := range qs.order {
		if q.GraphName.Value == graphName {
			out = append(out, q)
		}
	}
	return out
}

// Concat returns a new QuadSet containing first's quads followed by
// second's, skipping duplicates already present from first. Used to compose the
// mutable-then-immutable stream exposed by a composed resource view.
func Concat(first, second *QuadSet) *QuadSet {
	out := NewQuadSet(first.Quads()...)
	for _, q := range second.Quads() {
		out.Add(q)
	}
	return out
}
