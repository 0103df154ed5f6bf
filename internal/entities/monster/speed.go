package monster

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SpeedMode is one movement mode of a monster, e.g. {"fly", "80 ft."}
type SpeedMode struct {
	Mode  string
	Value string
}

// Speed is the set of movement modes in upstream order.
// A plain map would lose the order the API lists them in.
type Speed []SpeedMode

// Get returns the speed for a movement mode
func (s Speed) Get(mode string) (string, bool) {
	for _, m := range s {
		if m.Mode == mode {
			return m.Value, true
		}
	}
	return "", false
}

// String renders "walk 30 ft., fly 80 ft."
func (s Speed) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = m.Mode + " " + m.Value
	}
	return strings.Join(parts, ", ")
}

// UnmarshalJSON decodes a JSON object keeping key order
func (s *Speed) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("speed: expected object, got %v", tok)
	}

	var modes Speed
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("speed: expected string key, got %v", keyTok)
		}

		// Values are usually "30 ft." but hover is a boolean
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("speed: decode %q: %w", key, err)
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			value = string(bytes.TrimSpace(raw))
		}
		modes = append(modes, SpeedMode{Mode: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*s = modes
	return nil
}

// MarshalJSON encodes the modes as a JSON object in order
func (s Speed) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.Mode)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
