package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/soulmatch/soulmatch-backend/internal/model"
)

// ValidationError reports a model response that does not match the output contract.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scoring response: %s: %v", e.Reason, e.Err)
	}
	return "invalid scoring response: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

type rawResult struct {
	TypeCode   *string         `json:"type_code"`
	Dimensions *[]rawDimension `json:"dimensions"`
}

type rawDimension struct {
	Dimension     *string  `json:"dimension"`
	DominantTrait *string  `json:"dominant_trait"`
	Score         *float64 `json:"score"`
	Description   *string  `json:"description"`
}

// Parse decodes and validates a model response. Anything short of exactly one
// well-formed entry per dimension and a matching type code is rejected as a whole.
func Parse(data []byte) (*Result, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var raw rawResult
	if err := dec.Decode(&raw); err != nil {
		return nil, &ValidationError{Reason: "decode", Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, invalid("trailing data after JSON document")
	}

	if raw.TypeCode == nil {
		return nil, invalid("missing type_code")
	}
	if raw.Dimensions == nil {
		return nil, invalid("missing dimensions")
	}
	if n := len(*raw.Dimensions); n != len(model.Dimensions) {
		return nil, invalid("expected %d dimensions, got %d", len(model.Dimensions), n)
	}

	byDimension := make(map[model.Dimension]DimensionScore, len(model.Dimensions))
	for i, rd := range *raw.Dimensions {
		switch {
		case rd.Dimension == nil:
			return nil, invalid("dimensions[%d]: missing dimension", i)
		case rd.DominantTrait == nil:
			return nil, invalid("dimensions[%d]: missing dominant_trait", i)
		case rd.Score == nil:
			return nil, invalid("dimensions[%d]: missing score", i)
		case rd.Description == nil:
			return nil, invalid("dimensions[%d]: missing description", i)
		}

		dim := model.Dimension(*rd.Dimension)
		if !dim.Valid() {
			return nil, invalid("dimensions[%d]: unknown dimension %q", i, *rd.Dimension)
		}
		if _, dup := byDimension[dim]; dup {
			return nil, invalid("duplicate dimension %s", dim)
		}
		if !dim.HasTrait(*rd.DominantTrait) {
			return nil, invalid("dimension %s: trait %q is not one of its poles", dim, *rd.DominantTrait)
		}
		if *rd.Score < 0 || *rd.Score > 100 {
			return nil, invalid("dimension %s: score %v outside [0,100]", dim, *rd.Score)
		}
		if strings.TrimSpace(*rd.Description) == "" {
			return nil, invalid("dimension %s: empty description", dim)
		}

		byDimension[dim] = DimensionScore{
			Dimension:     dim,
			DominantTrait: *rd.DominantTrait,
			Score:         *rd.Score,
			Description:   *rd.Description,
		}
	}

	res := &Result{Dimensions: make([]DimensionScore, 0, len(model.Dimensions))}
	var code strings.Builder
	for _, d := range model.Dimensions {
		ds, ok := byDimension[d]
		if !ok {
			return nil, invalid("missing dimension %s", d)
		}
		res.Dimensions = append(res.Dimensions, ds)
		code.WriteString(ds.DominantTrait)
	}

	if *raw.TypeCode != code.String() {
		return nil, invalid("type_code %q does not match dominant traits %q", *raw.TypeCode, code.String())
	}
	res.TypeCode = code.String()

	return res, nil
}
