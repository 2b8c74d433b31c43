package entity

import (
	"encoding/json"
	"strings"
)

// Tags is an ordered list of event labels. Spreadsheet cells carry them as a
// single "|" or "," separated value.
type Tags []string

func (t Tags) MarshalJSON() ([]byte, error) {
	return json.Marshal([]string(t))
}

func (t *Tags) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*t = values
	return nil
}

func (t Tags) MarshalText() ([]byte, error) {
	return []byte(strings.Join(t, "|")), nil
}

func (t *Tags) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*t = nil
		return nil
	}
	sep := "|"
	if !strings.Contains(raw, sep) {
		sep = ","
	}
	var values Tags
	for _, part := range strings.Split(raw, sep) {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	*t = values
	return nil
}
