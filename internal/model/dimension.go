package model

// Dimension is one of the four bipolar personality axes.
type Dimension string

const (
	DimensionEI Dimension = "EI" // Extrovert / Introvert
	DimensionSN Dimension = "SN" // Sensing / Intuition
	DimensionTF Dimension = "TF" // Thinking / Feeling
	DimensionJP Dimension = "JP" // Judging / Perceiving
)

// Dimensions lists every dimension in type-code order.
var Dimensions = []Dimension{DimensionEI, DimensionSN, DimensionTF, DimensionJP}

// Poles returns the first and second trait letter of the dimension.
func (d Dimension) Poles() (first, second string) {
	switch d {
	case DimensionEI, DimensionSN, DimensionTF, DimensionJP:
		return string(d[0]), string(d[1])
	default:
		return "", ""
	}
}

// Valid reports whether d is one of the four known dimensions.
func (d Dimension) Valid() bool {
	first, _ := d.Poles()
	return first != ""
}

// HasTrait reports whether trait is one of the dimension's two poles.
func (d Dimension) HasTrait(trait string) bool {
	first, second := d.Poles()
	return first != "" && (trait == first || trait == second)
}
