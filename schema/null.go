package schema

import "encoding/json"

// Nil is the type produced by the Null() schema.
type Nil struct{}

// Null returns a schema that only accepts the absence of a value.
//
// It accepts nil, a Nil value, and raw JSON that is empty or null.
func Null() Schema[Nil] {
	return nullSchema{}
}

type nullSchema struct{}

func (nullSchema) Validate(v any) (Nil, error) {
	switch x := v.(type) {
	case nil, Nil, *Nil:
		return Nil{}, nil
	case json.RawMessage:
		if len(x) == 0 || string(x) == "null" {
			return Nil{}, nil
		}
	}

	return Nil{}, newError(Issue{Rule: "null", Message: "expected no value"})
}
