package phone

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Serialized bodies. Field names are the canonical persisted names.
type (
	plosiveBody struct {
		Place       PlosivePlace `json:"place" yaml:"place"`
		Voiced      bool         `json:"voiced" yaml:"voiced"`
		Attachments Attachments  `json:"attachments" yaml:"attachments"`
	}
	affricativeBody struct {
		StartPlace  PlosivePlace   `json:"start_place" yaml:"start_place"`
		EndPlace    FricativePlace `json:"end_place" yaml:"end_place"`
		Voiced      bool           `json:"voiced" yaml:"voiced"`
		Attachments Attachments    `json:"attachments" yaml:"attachments"`
	}
	fricativeBody struct {
		Place       FricativePlace `json:"place" yaml:"place"`
		Voiced      bool           `json:"voiced" yaml:"voiced"`
		Attachments Attachments    `json:"attachments" yaml:"attachments"`
	}
	vowelBody struct{}
)

// tagged returns the externally tagged representation: the bare string
// "Null" or a single-key map from variant name to body.
func (p Phone) tagged() (interface{}, error) {
	switch p.Kind {
	case KindNull:
		return KindNull.String(), nil
	case KindPlosive:
		return map[string]interface{}{p.Kind.String(): plosiveBody{
			Place: p.Place, Voiced: p.Voiced, Attachments: p.Attachments,
		}}, nil
	case KindAffricative:
		return map[string]interface{}{p.Kind.String(): affricativeBody{
			StartPlace: p.Place, EndPlace: p.Release, Voiced: p.Voiced, Attachments: p.Attachments,
		}}, nil
	case KindFricative:
		return map[string]interface{}{p.Kind.String(): fricativeBody{
			Place: p.Release, Voiced: p.Voiced, Attachments: p.Attachments,
		}}, nil
	case KindVowel:
		return map[string]interface{}{p.Kind.String(): vowelBody{}}, nil
	default:
		return nil, fmt.Errorf("cannot encode phone kind %d", uint8(p.Kind))
	}
}

// MarshalJSON encodes the phone in its externally tagged form.
func (p Phone) MarshalJSON() ([]byte, error) {
	v, err := p.tagged()
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes the externally tagged form.
func (p *Phone) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return err
		}
		switch tag {
		case "Null":
			*p = Null()
		case "Vowel":
			*p = Vowel()
		default:
			return fmt.Errorf("phone: unit variant %q not recognised", tag)
		}
		return nil
	}

	var variants map[string]json.RawMessage
	if err := json.Unmarshal(data, &variants); err != nil {
		return fmt.Errorf("phone: %w", err)
	}
	if len(variants) != 1 {
		return fmt.Errorf("phone: expected exactly one variant, got %d", len(variants))
	}

	for tag, body := range variants {
		decoded, err := decodeVariant(tag, body)
		if err != nil {
			return err
		}
		if err := decoded.Validate(); err != nil {
			return fmt.Errorf("phone: %w", err)
		}
		*p = decoded
	}
	return nil
}

func decodeVariant(tag string, body json.RawMessage) (Phone, error) {
	switch tag {
	case "Plosive":
		var b plosiveBody
		if err := json.Unmarshal(body, &b); err != nil {
			return Phone{}, fmt.Errorf("phone: plosive: %w", err)
		}
		return Phone{Kind: KindPlosive, Place: b.Place, Voiced: b.Voiced, Attachments: b.Attachments}, nil
	case "Affricative":
		var b affricativeBody
		if err := json.Unmarshal(body, &b); err != nil {
			return Phone{}, fmt.Errorf("phone: affricative: %w", err)
		}
		return Phone{
			Kind:        KindAffricative,
			Place:       b.StartPlace,
			Release:     b.EndPlace,
			Voiced:      b.Voiced,
			Attachments: b.Attachments,
		}, nil
	case "Fricative":
		var b fricativeBody
		if err := json.Unmarshal(body, &b); err != nil {
			return Phone{}, fmt.Errorf("phone: fricative: %w", err)
		}
		return Phone{Kind: KindFricative, Release: b.Place, Voiced: b.Voiced, Attachments: b.Attachments}, nil
	case "Vowel":
		return Vowel(), nil
	case "Null":
		return Null(), nil
	default:
		return Phone{}, fmt.Errorf("phone: unknown variant %q", tag)
	}
}

// MarshalYAML encodes the same tagged shape as MarshalJSON.
func (p Phone) MarshalYAML() (interface{}, error) {
	return p.tagged()
}

// UnmarshalYAML decodes the tagged shape by way of the JSON decoder so both
// formats share one set of rules.
func (p *Phone) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("phone: %w", err)
	}
	return p.UnmarshalJSON(data)
}
