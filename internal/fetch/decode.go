// Package fetch retrieves raw catalog records from the upstream API through
// an ordered chain of strategies, each wrapped with bounded retries.
package fetch

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/everstacklabs/modelfeed/internal/catalog"
)

// ErrBadShape reports a JSON body whose top level matches none of the
// accepted catalog shapes.
var ErrBadShape = errors.New("response matches no known catalog shape")

// DecodeRecords parses a catalog response body. Three top-level shapes are
// accepted, each tried explicitly in order: {"data": [...]}, a bare array,
// and {"models": [...]}. Records that fail to decode individually are dropped
// so one malformed entry cannot fail the whole fetch.
func DecodeRecords(body []byte) ([]catalog.RawRecord, error) {
	items, err := topLevelItems(body)
	if err != nil {
		return nil, err
	}

	records := make([]catalog.RawRecord, 0, len(items))
	dropped := 0
	for _, item := range items {
		var rec catalog.RawRecord
		if err := json.Unmarshal(item, &rec); err != nil {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if dropped > 0 {
		slog.Debug("dropped undecodable catalog records", "dropped", dropped, "kept", len(records))
	}
	return records, nil
}

func topLevelItems(body []byte) ([]json.RawMessage, error) {
	var dataShape struct {
		Data *[]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &dataShape); err == nil && dataShape.Data != nil {
		return *dataShape.Data, nil
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var modelsShape struct {
		Models *[]json.RawMessage `json:"models"`
	}
	if err := json.Unmarshal(body, &modelsShape); err == nil && modelsShape.Models != nil {
		return *modelsShape.Models, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrBadShape, preview(body))
}

func preview(body []byte) string {
	const n = 80
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
