package domain

import (
	"encoding/json"
	"testing"
)

func TestParseDatasetRefString(t *testing.T) {
	ref := ParseDatasetRef("507f1f77bcf86cd799439011")
	if !ref.Structured() {
		t.Fatalf("24-hex string should qualify as structured")
	}
	if ref.String() != "507f1f77bcf86cd799439011" {
		t.Fatalf("unexpected canonical form: %q", ref.String())
	}

	ref = ParseDatasetRef("not-a-valid-id")
	if ref.Structured() {
		t.Fatalf("arbitrary string must stay raw")
	}
	if ref.String() != "not-a-valid-id" {
		t.Fatalf("raw value must pass through unchanged, got %q", ref.String())
	}
}

func TestParseDatasetRefAllDigits(t *testing.T) {
	// digits are valid hex characters, so an all-digit 24-char id is structured
	ref := ParseDatasetRef("123456789012345678901234")
	if !ref.Structured() {
		t.Fatalf("all-digit 24-char id should be structured")
	}
}

func TestParseDatasetRefWrapperObject(t *testing.T) {
	ref := ParseDatasetRef(map[string]any{"$oid": "507f1f77bcf86cd799439011"})
	if !ref.Structured() || ref.String() != "507f1f77bcf86cd799439011" {
		t.Fatalf("direct wrapper not unwrapped: %+v", ref)
	}

	nested := map[string]any{"$id": map[string]any{"$oid": "507f1f77bcf86cd799439011"}}
	ref = ParseDatasetRef(nested)
	if !ref.Structured() || ref.String() != "507f1f77bcf86cd799439011" {
		t.Fatalf("nested wrapper not unwrapped: %+v", ref)
	}
}

func TestParseDatasetRefUnknownObjectDegradesToRaw(t *testing.T) {
	ref := ParseDatasetRef(map[string]any{"foo": "bar"})
	if ref.Structured() {
		t.Fatalf("unknown object must degrade to raw form")
	}
	if ref.String() == "" {
		t.Fatalf("stringified fallback must not be empty")
	}
}

func TestParseDatasetRefNeverPanics(t *testing.T) {
	for _, v := range []any{nil, 42, 3.14, true, []any{"x"}, map[string]any{"$oid": 7}} {
		_ = ParseDatasetRef(v)
	}
}

func TestDatasetRefJSONRoundTrip(t *testing.T) {
	var ref DatasetRef
	if err := json.Unmarshal([]byte(`{"$oid":"507f1f77bcf86cd799439011"}`), &ref); err != nil {
		t.Fatalf("unmarshal wrapper: %v", err)
	}
	if !ref.Structured() {
		t.Fatalf("wrapper should decode as structured")
	}
	raw, err := json.Marshal(ref)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `"507f1f77bcf86cd799439011"` {
		t.Fatalf("canonical string form expected on marshal, got %s", raw)
	}

	if err := json.Unmarshal([]byte(`"plain-id"`), &ref); err != nil {
		t.Fatalf("unmarshal string: %v", err)
	}
	if ref.Structured() || ref.String() != "plain-id" {
		t.Fatalf("plain string mishandled: %+v", ref)
	}
}
