package breed

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestID_RoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantStr  string
		wantJSON string
	}{
		{name: "number", input: `1`, wantStr: "1", wantJSON: `1`},
		{name: "large number", input: `264`, wantStr: "264", wantJSON: `264`},
		{name: "string", input: `"abys"`, wantStr: "abys", wantJSON: `"abys"`},
		{name: "numeric string stays string", input: `"7"`, wantStr: "7", wantJSON: `"7"`},
		{name: "null", input: `null`, wantStr: "", wantJSON: `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.input), &id); err != nil {
				t.Fatalf("Unmarshal(%s) failed: %v", tt.input, err)
			}
			if id.String() != tt.wantStr {
				t.Errorf("String() = %q, want %q", id.String(), tt.wantStr)
			}

			out, err := json.Marshal(id)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}
			if string(out) != tt.wantJSON {
				t.Errorf("Marshal = %s, want %s", out, tt.wantJSON)
			}
		})
	}
}

func TestID_InvalidJSON(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Error("expected error decoding boolean id")
	}
}

func TestRaw_DecodeMissingFields(t *testing.T) {
	var records []Raw
	body := `[{"id":1,"name":"Beagle"},{"id":2,"height":{"imperial":"10"},"image":null}]`
	if err := json.Unmarshal([]byte(body), &records); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].Origin != nil || records[0].Height != nil || records[0].Image != nil {
		t.Errorf("absent fields decoded as present: %+v", records[0])
	}
	if records[1].Name != nil {
		t.Errorf("Name = %q, want nil", *records[1].Name)
	}
	if records[1].Height == nil || records[1].Height.Metric != nil {
		t.Errorf("Height = %+v, want imperial only", records[1].Height)
	}
}

func TestFindByID(t *testing.T) {
	records := []Raw{
		{ID: NumericID(1), Name: Str("Beagle")},
		{ID: StringID("abys"), Name: Str("Abyssinian")},
		{ID: NumericID(1), Name: Str("Duplicate")},
		{Name: Str("No id")},
	}

	tests := []struct {
		name     string
		id       string
		wantName string
		wantErr  error
	}{
		{name: "numeric id matches string lookup", id: "1", wantName: "Beagle"},
		{name: "string id", id: "abys", wantName: "Abyssinian"},
		{name: "missing id", id: "999", wantErr: ErrNotFound},
		{name: "empty lookup never matches absent id", id: "", wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindByID(records, tt.id)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FindByID(%q) error = %v, want %v", tt.id, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FindByID(%q) failed: %v", tt.id, err)
			}
			if *got.Name != tt.wantName {
				t.Errorf("FindByID(%q) name = %q, want %q", tt.id, *got.Name, tt.wantName)
			}
		})
	}
}

func TestFindByID_EmptyCatalog(t *testing.T) {
	if _, err := FindByID(nil, "999"); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByID on empty catalog error = %v, want ErrNotFound", err)
	}
}
