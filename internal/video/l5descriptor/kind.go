package l5descriptor

// Kind identifies one descriptor channel. The declaration order is the
// order of the channels inside a packed descriptor.
type Kind int

const (
	KindNone Kind = iota
	KindHOG
	KindHOF
	KindMBHX
	KindMBHY
	KindSpatialVariance
	KindDC
	KindVerticalVariance
	KindHorizontalVariance
)

// Kinds lists every channel kind in packed order.
var Kinds = []Kind{
	KindHOG,
	KindHOF,
	KindMBHX,
	KindMBHY,
	KindSpatialVariance,
	KindDC,
	KindVerticalVariance,
	KindHorizontalVariance,
}

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindHOG:
		return "hog"
	case KindHOF:
		return "hof"
	case KindMBHX:
		return "mbhx"
	case KindMBHY:
		return "mbhy"
	case KindSpatialVariance:
		return "spatialVariance"
	case KindDC:
		return "dc"
	case KindVerticalVariance:
		return "verticalVariance"
	case KindHorizontalVariance:
		return "horizontalVariance"
	default:
		return "unknown"
	}
}

// Span locates one channel inside the packed descriptor.
type Span struct {
	Kind   Kind
	Offset int
	Len    int
}
