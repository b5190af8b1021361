package scoring

import (
	"github.com/soulmatch/soulmatch-backend/internal/model"
	"google.golang.org/genai"
)

// ResponseSchema describes the only JSON shape the model may answer with.
func ResponseSchema() *genai.Schema {
	dims := make([]string, 0, len(model.Dimensions))
	traits := make([]string, 0, 2*len(model.Dimensions))
	for _, d := range model.Dimensions {
		dims = append(dims, string(d))
		first, second := d.Poles()
		traits = append(traits, first, second)
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"type_code": {
				Type:        genai.TypeString,
				Description: "Four dominant trait letters in the order EI, SN, TF, JP, e.g. ESTJ.",
			},
			"dimensions": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr[int64](4),
				MaxItems: genai.Ptr[int64](4),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"dimension":      {Type: genai.TypeString, Enum: dims},
						"dominant_trait": {Type: genai.TypeString, Enum: traits},
						"score": {
							Type:    genai.TypeNumber,
							Minimum: genai.Ptr[float64](0),
							Maximum: genai.Ptr[float64](100),
						},
						"description": {Type: genai.TypeString},
					},
					Required:         []string{"dimension", "dominant_trait", "score", "description"},
					PropertyOrdering: []string{"dimension", "dominant_trait", "score", "description"},
				},
			},
		},
		Required:         []string{"type_code", "dimensions"},
		PropertyOrdering: []string{"type_code", "dimensions"},
	}
}
