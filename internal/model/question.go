package model

// Question is a single statement of the personality questionnaire.
// Reversed questions point at the second pole of their dimension when answered high.
type Question struct {
	ID        int       `json:"id"`
	Text      string    `json:"text"`
	Dimension Dimension `json:"dimension"`
	Reversed  bool      `json:"-"`
}
