package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Metadata describes the provider usage behind a command's output
type Metadata struct {
	Provider     string   `json:"provider"`
	Model        string   `json:"model"`
	LiveCalls    int      `json:"live_calls"`
	TokensInput  int      `json:"tokens_input"`
	TokensOutput int      `json:"tokens_output"`
	Cost         *float64 `json:"cost,omitempty"` // nil when pricing is unknown
}

// FormatJSON marshals v as indented JSON. A non-empty source is stamped
// into the top-level object unless v already carries one, and meta is
// added under "metadata". Arrays are wrapped under "items".
func FormatJSON(v any, source string, meta *Metadata) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if !gjson.ParseBytes(data).IsObject() {
		data, err = sjson.SetRawBytes([]byte(`{}`), "items", data)
		if err != nil {
			return "", fmt.Errorf("failed to wrap JSON: %w", err)
		}
	}

	if source != "" && gjson.GetBytes(data, "source").String() == "" {
		if data, err = sjson.SetBytes(data, "source", source); err != nil {
			return "", fmt.Errorf("failed to stamp source: %w", err)
		}
	}

	if meta != nil {
		if data, err = sjson.SetBytes(data, "metadata", meta); err != nil {
			return "", fmt.Errorf("failed to add metadata: %w", err)
		}
	}

	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return "", fmt.Errorf("failed to indent JSON: %w", err)
	}
	return out.String(), nil
}
