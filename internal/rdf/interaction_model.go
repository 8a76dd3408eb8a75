package rdf

// InteractionModel is one of the five LDP resource kinds.
type InteractionModel int

const (
	RDFSource InteractionModel = iota
	NonRDFSource
	BasicContainer
	DirectContainer
	IndirectContainer
)

func (m InteractionModel) String() string {
	switch m {
	case RDFSource:
		return "RDFSource"
	case NonRDFSource:
		return "NonRDFSource"
	case BasicContainer:
		return "BasicContainer"
	case DirectContainer:
		return "DirectContainer"
	case IndirectContainer:
		return "IndirectContainer"
	default:
		return "Unknown"
	}
}

// IRI returns the LDP vocabulary IRI for the interaction model, used as the
// rdf:type object written into a resource's server-managed graph.
func (m InteractionModel) IRI() string {
	switch m {
	case RDFSource:
		return PrefixLDP + "RDFSource"
	case NonRDFSource:
		return PrefixLDP + "NonRDFSource"
	case BasicContainer:
		return PrefixLDP + "BasicContainer"
	case DirectContainer:
		return PrefixLDP + "DirectContainer"
	case IndirectContainer:
		return PrefixLDP + "IndirectContainer"
	default:
		return ""
	}
}

// IsContainer reports whether m is one of the three container kinds.
func (m InteractionModel) IsContainer() bool {
	return m == BasicContainer || m == DirectContainer || m == IndirectContainer
}

// SupportedInteractionModels lists every interaction model the resource
// service can assign to a newly created resource.
func SupportedInteractionModels() []InteractionModel {
	return []InteractionModel{RDFSource, NonRDFSource, BasicContainer, DirectContainer, IndirectContainer}
}
