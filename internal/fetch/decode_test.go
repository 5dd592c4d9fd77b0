package fetch

import (
	"errors"
	"testing"
)

func TestDecodeRecordsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"data envelope", `{"data":[{"id":"a","name":"A"},{"id":"b","name":"B"}]}`, 2},
		{"bare array", `[{"id":"a","name":"A"}]`, 1},
		{"models envelope", `{"models":[{"id":"a","name":"A"},{"id":"b","name":"B"},{"id":"c","name":"C"}]}`, 3},
		{"empty data envelope", `{"data":[]}`, 0},
		{"empty bare array", `[]`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := DecodeRecords([]byte(tt.body))
			if err != nil {
				t.Fatalf("DecodeRecords: %v", err)
			}
			if len(records) != tt.want {
				t.Errorf("got %d records, want %d", len(records), tt.want)
			}
		})
	}
}

func TestDecodeRecordsBadShape(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown envelope", `{"items":[{"id":"a"}]}`},
		{"null data", `{"data":null}`},
		{"scalar", `42`},
		{"string", `"hello"`},
		{"not json", `<html>blocked</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecords([]byte(tt.body))
			if !errors.Is(err, ErrBadShape) {
				t.Errorf("err = %v, want ErrBadShape", err)
			}
		})
	}
}

func TestDecodeRecordsDropsMalformedEntries(t *testing.T) {
	// The second record's id is an object; it is dropped, not fatal.
	body := `{"data":[{"id":"a","name":"A"},{"id":{"nested":true},"name":"B"},{"id":"c","name":"C"}]}`

	records, err := DecodeRecords([]byte(body))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ID != "a" || records[1].ID != "c" {
		t.Errorf("unexpected survivors: %q, %q", records[0].ID, records[1].ID)
	}
}

func TestDecodeRecordsLooseFields(t *testing.T) {
	body := `{"data":[{
		"id": "acme/m",
		"name": "M",
		"pricing": {"prompt": "$0.001", "completion": 0.002},
		"context_length": "128k"
	}]}`

	records, err := DecodeRecords([]byte(body))
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Pricing == nil {
		t.Fatal("pricing block lost in decode")
	}
	if _, ok := r.Pricing.Prompt.(string); !ok {
		t.Errorf("prompt price = %T, want string preserved", r.Pricing.Prompt)
	}
	if _, ok := r.Pricing.Completion.(float64); !ok {
		t.Errorf("completion price = %T, want float64 preserved", r.Pricing.Completion)
	}
	if _, ok := r.ContextLength.(string); !ok {
		t.Errorf("context length = %T, want string preserved", r.ContextLength)
	}
}
