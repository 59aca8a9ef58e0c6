package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/legendpack/pkg/legend"
)

// Packed is the serialized form of a packing result.
type Packed struct {
	RequestID    string           `json:"requestId,omitempty"`
	SectionsUsed int              `json:"sectionsUsed"`
	Strategy     legend.Strategy  `json:"strategy"`
	MaxHeight    float64          `json:"maxHeight"`
	TotalHeight  float64          `json:"totalHeight"`
	Sections     []legend.Section `json:"sections"`
	Layers       []*legend.Block  `json:"layers"`
}

// FromResult converts a packing result to its serialized form.
func FromResult(res legend.Result) Packed {
	p := Packed{
		SectionsUsed: res.SectionsUsed,
		Strategy:     res.Strategy,
		MaxHeight:    res.MaxHeight,
		TotalHeight:  res.TotalHeight,
		Sections:     res.Sections,
		Layers:       res.Layers,
	}
	if p.Sections == nil {
		p.Sections = []legend.Section{}
	}
	if p.Layers == nil {
		p.Layers = []*legend.Block{}
	}
	return p
}

// Result converts the serialized form back into a packing result.
func (p Packed) Result() legend.Result {
	return legend.Result{
		Layers:       p.Layers,
		SectionsUsed: p.SectionsUsed,
		Strategy:     p.Strategy,
		Sections:     p.Sections,
		MaxHeight:    p.MaxHeight,
		TotalHeight:  p.TotalHeight,
	}
}

// WriteJSON encodes a packing result as indented JSON and writes it to w.
func WriteJSON(res legend.Result, w io.Writer) error {
	return WritePacked(FromResult(res), w)
}

// WritePacked encodes p as indented JSON and writes it to w.
func WritePacked(p Packed, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadPacked decodes a packing result previously written by [WriteJSON].
func ReadPacked(r io.Reader) (Packed, error) {
	var p Packed
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return Packed{}, fmt.Errorf("decode: %w", err)
	}
	return p, nil
}

// ExportJSON writes a packing result to a JSON file at path.
func ExportJSON(res legend.Result, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(res, f)
}
