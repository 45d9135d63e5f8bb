package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/iwvelando/rental-projection/pkg/mathutil"
	"gopkg.in/yaml.v3"
)

// UnmarshalJSON accepts a JSON number or a loosely formatted string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return a.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*a = Amount(f)
	return nil
}

// UnmarshalYAML accepts a YAML number or a loosely formatted string.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", value.Line)
	}
	return a.parse(value.Value)
}

func (a *Amount) parse(s string) error {
	parsed, err := mathutil.ParseAmount(s)
	if err != nil {
		return err
	}
	*a = Amount(parsed)
	return nil
}

// Float64 returns the amount as a float64.
func (a Amount) Float64() float64 {
	return float64(a)
}
