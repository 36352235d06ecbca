package filter

import (
	"encoding/json"
	"fmt"

	"github.com/prospect-labs/prospector/internal/domain"
)

// MaxBlobBytes caps the serialized filter blob size.
const MaxBlobBytes = 1 << 20

// wireValue is the persisted JSON shape of a single filter value.
type wireValue struct {
	Kind       Kind            `json:"kind"`
	Text       string          `json:"text,omitempty"`
	Selections []string        `json:"selections,omitempty"`
	Min        *float64        `json:"min,omitempty"`
	Max        *float64        `json:"max,omitempty"`
	Checked    map[string]bool `json:"checked,omitempty"`
	Address    string          `json:"address,omitempty"`
	Radius     float64         `json:"radius,omitempty"`
	Number     *float64        `json:"number,omitempty"`
}

// Marshal serializes the set as a persisted filter blob: a JSON object keyed
// by filter name, size-capped and restricted to printable ASCII plus
// newline and tab.
func Marshal(s Set) ([]byte, error) {
	wire := make(map[string]wireValue, len(s))
	for name, v := range s {
		wire[name] = toWire(v)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal filter blob: %w", err)
	}
	if err := checkBlob(data); err != nil {
		return nil, err
	}
	return data, nil
}

// Unmarshal parses and validates a persisted filter blob. The resulting
// values still need schema validation before use.
func Unmarshal(data []byte) (Set, error) {
	if err := checkBlob(data); err != nil {
		return nil, err
	}
	var wire map[string]wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: malformed filter blob: %w", domain.ErrValidation, err)
	}
	set := make(Set, len(wire))
	for name, wv := range wire {
		v, err := fromWire(wv)
		if err != nil {
			return nil, fmt.Errorf("%w: filter %q: %w", domain.ErrValidation, name, err)
		}
		set[name] = v
	}
	return set, nil
}

func toWire(v Value) wireValue {
	wv := wireValue{Kind: v.kind}
	switch v.kind {
	case Text:
		wv.Text = v.text
	case MultiSelect:
		wv.Selections = v.Selections()
	case Range:
		wv.Min, wv.Max = v.min, v.max
	case CheckboxSet:
		wv.Checked = v.Checked()
	case LocationRadius:
		wv.Address = v.address
		wv.Radius = v.radius
	case Number:
		wv.Number = v.number
	}
	return wv
}

func fromWire(wv wireValue) (Value, error) {
	switch wv.Kind {
	case Text:
		return NewText(wv.Text), nil
	case MultiSelect:
		return NewMultiSelect(wv.Selections), nil
	case Range:
		return NewRange(wv.Min, wv.Max)
	case CheckboxSet:
		return NewCheckboxSet(wv.Checked), nil
	case LocationRadius:
		return NewLocationRadius(wv.Address, wv.Radius), nil
	case Number:
		if wv.Number == nil {
			return Value{kind: Number}, nil
		}
		return NewNumber(*wv.Number), nil
	}
	return Value{}, fmt.Errorf("unsupported filter kind %q", wv.Kind)
}

// checkBlob enforces the blob size cap and the printable-ASCII charset
// (0x20-0x7E plus \n and \t).
func checkBlob(data []byte) error {
	if len(data) > MaxBlobBytes {
		return fmt.Errorf("%w: filter blob too large: %d bytes (max %d)",
			domain.ErrValidation, len(data), MaxBlobBytes)
	}
	for i, b := range data {
		if (b < 0x20 || b > 0x7E) && b != '\n' && b != '\t' {
			return fmt.Errorf("%w: filter blob contains invalid byte 0x%02x at offset %d",
				domain.ErrValidation, b, i)
		}
	}
	return nil
}
