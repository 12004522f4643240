package model

import (
	"encoding/json"
	"fmt"
)

// The wire form tags every element with a "type" discriminator so the mixed
// heading/article sequence survives a round trip. Every attribute of the
// data model is carried.

type headingEnvelope struct {
	Type string `json:"type"`
	SectionHeading
}

type articleEnvelope struct {
	Type string `json:"type"`
	ArticleBlock
}

type elementProbe struct {
	Type string `json:"type"`
}

// MarshalJSON serializes the document as {"elements": [...]}, each element
// tagged "heading" or "article".
func (d *Document) MarshalJSON() ([]byte, error) {
	elements := make([]json.RawMessage, 0, len(d.Elements))
	for i, el := range d.Elements {
		var (
			raw []byte
			err error
		)
		switch e := el.(type) {
		case *SectionHeading:
			raw, err = json.Marshal(headingEnvelope{Type: "heading", SectionHeading: *e})
		case *ArticleBlock:
			raw, err = json.Marshal(articleEnvelope{Type: "article", ArticleBlock: *e})
		default:
			err = fmt.Errorf("element %d: unknown element type %T", i, el)
		}
		if err != nil {
			return nil, err
		}
		elements = append(elements, raw)
	}
	return json.Marshal(map[string][]json.RawMessage{"elements": elements})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (d *Document) UnmarshalJSON(data []byte) error {
	var wire struct {
		Elements []json.RawMessage `json:"elements"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}

	d.Elements = make([]Element, 0, len(wire.Elements))
	for i, raw := range wire.Elements {
		var probe elementProbe
		if err := json.Unmarshal(raw, &probe); err != nil {
			return fmt.Errorf("decoding element %d: %w", i, err)
		}
		switch probe.Type {
		case "heading":
			var h SectionHeading
			if err := json.Unmarshal(raw, &h); err != nil {
				return fmt.Errorf("decoding heading %d: %w", i, err)
			}
			d.Elements = append(d.Elements, &h)
		case "article":
			var a ArticleBlock
			if err := json.Unmarshal(raw, &a); err != nil {
				return fmt.Errorf("decoding article %d: %w", i, err)
			}
			d.Elements = append(d.Elements, &a)
		default:
			return fmt.Errorf("element %d: unknown type %q", i, probe.Type)
		}
	}
	return nil
}
