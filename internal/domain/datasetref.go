package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
)

var structuredIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// DatasetRef is a dataset identifier decoded once at the request boundary.
// A structured ref carries a 24-hex document id; anything else stays a raw
// string. The canonical string form is what gets stored and compared, never
// the wrapper object a client may have sent.
type DatasetRef struct {
	value      string
	structured bool
}

// ParseDatasetRef canonicalizes any identifier shape a client can submit:
// a plain string, a 24-hex string, or a serialized document-id wrapper
// ({"$oid": ...} directly or nested one level under "$id"). Normalization
// never fails; an unrecognized object degrades to its stringified raw form
// and downstream lookups report not found.
func ParseDatasetRef(v any) DatasetRef {
	switch id := v.(type) {
	case nil:
		return DatasetRef{}
	case DatasetRef:
		return id
	case string:
		return refFromString(id)
	case map[string]any:
		if s, ok := id["$oid"].(string); ok {
			return refFromString(s)
		}
		if nested, ok := id["$id"].(map[string]any); ok {
			if s, ok := nested["$oid"].(string); ok {
				return refFromString(s)
			}
		}
		return refFromString(fmt.Sprint(id))
	default:
		return refFromString(fmt.Sprint(v))
	}
}

func refFromString(s string) DatasetRef {
	return DatasetRef{value: s, structured: structuredIDPattern.MatchString(s)}
}

// String returns the canonical string form used for storage and equality.
func (r DatasetRef) String() string { return r.value }

// Structured reports whether the ref qualifies as a 24-hex document id.
// Structured lookups take priority; raw-string matching is the fallback.
func (r DatasetRef) Structured() bool { return r.structured }

func (r DatasetRef) IsZero() bool { return r.value == "" }

func (r *DatasetRef) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = ParseDatasetRef(v)
	return nil
}

func (r DatasetRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value)
}
