package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CurrentRun returns the experiment's latest run, or nil when no run has
// been taken yet.
func (c *Client) CurrentRun(experiment string) (*Run, error) {
	data, err := c.get(experimentPath(experiment, "current_run"))
	if err != nil {
		return nil, err
	}
	raw, err := decodeValue[json.RawMessage](data)
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return nil, nil
	}
	var run Run
	if err := json.Unmarshal(raw, &run); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &run, nil
}
