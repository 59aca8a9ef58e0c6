package legend

import (
	"fmt"

	"github.com/matzehuels/legendpack/pkg/errors"
)

// Kind classifies a legend block.
type Kind string

const (
	KindLayer Kind = "layer"
	KindGroup Kind = "group"
	KindItem  Kind = "item"
)

// MaxDepth is the deepest nesting [Validate] accepts.
const MaxDepth = 32

// Block is a renderable legend unit. All heights are in client units,
// usually pixels.
type Block struct {
	ID           string   `json:"id,omitempty"`
	Name         string   `json:"name,omitempty"`
	Kind         Kind     `json:"type,omitempty"`
	Height       float64  `json:"height"`
	HeaderHeight float64  `json:"headerHeight,omitempty"`
	Items        []*Block `json:"items,omitempty"`

	// Y is the offset from the top of the parent block, or from the top of
	// the legend for top-level layers. Written by the packer.
	Y float64 `json:"y"`

	// SplitBefore marks that a new section starts right before this block.
	// Written by the packer.
	SplitBefore bool `json:"splitBefore,omitempty"`
}

// IsContainer reports whether b has children.
func (b *Block) IsContainer() bool { return len(b.Items) > 0 }

// Extent returns the vertical space b occupies. For a container this is its
// header plus the extents of its children; for a leaf it is Height.
func (b *Block) Extent() float64 {
	if !b.IsContainer() {
		return b.Height
	}
	h := b.HeaderHeight
	for _, c := range b.Items {
		h += c.Extent()
	}
	return h
}

// Label returns the best human-readable name for b.
func (b *Block) Label() string {
	switch {
	case b.Name != "":
		return b.Name
	case b.ID != "":
		return b.ID
	case b.Kind != "":
		return string(b.Kind)
	}
	return string(KindItem)
}

// Walk visits b and its descendants in document order. Returning false from
// fn skips the children of the visited block.
func (b *Block) Walk(fn func(b *Block, depth int) bool) {
	b.walk(fn, 0)
}

func (b *Block) walk(fn func(*Block, int) bool, depth int) {
	if !fn(b, depth) {
		return
	}
	for _, c := range b.Items {
		c.walk(fn, depth+1)
	}
}

// Clone returns a deep copy of b.
func (b *Block) Clone() *Block {
	if b == nil {
		return nil
	}
	out := *b
	if b.Items != nil {
		out.Items = make([]*Block, len(b.Items))
		for i, c := range b.Items {
			out.Items[i] = c.Clone()
		}
	}
	return &out
}

// CloneAll deep-copies a forest of layers.
func CloneAll(layers []*Block) []*Block {
	out := make([]*Block, len(layers))
	for i, l := range layers {
		out[i] = l.Clone()
	}
	return out
}

// ClearSplits resets SplitBefore on every block of the forest.
func ClearSplits(layers []*Block) {
	for _, l := range layers {
		l.Walk(func(b *Block, _ int) bool {
			b.SplitBefore = false
			return true
		})
	}
}

// SplitFlags returns the SplitBefore flag of each top-level layer.
func SplitFlags(layers []*Block) []bool {
	out := make([]bool, len(layers))
	for i, l := range layers {
		out[i] = l.SplitBefore
	}
	return out
}

// CountSplits returns the number of blocks in the forest with SplitBefore set.
func CountSplits(layers []*Block) int {
	n := 0
	for _, l := range layers {
		l.Walk(func(b *Block, _ int) bool {
			if b.SplitBefore {
				n++
			}
			return true
		})
	}
	return n
}

// Validate checks that a forest is well formed: no nil blocks, no negative
// heights, known kinds and nesting no deeper than MaxDepth.
func Validate(layers []*Block) error {
	for i, l := range layers {
		if err := validateBlock(l, fmt.Sprintf("layers[%d]", i), 0); err != nil {
			return err
		}
	}
	return nil
}

func validateBlock(b *Block, path string, depth int) error {
	if b == nil {
		return errors.New(errors.ErrCodeInvalidInput, "%s: block is null", path)
	}
	if depth > MaxDepth {
		return errors.New(errors.ErrCodeInvalidInput, "%s: nesting deeper than %d levels", path, MaxDepth)
	}
	switch b.Kind {
	case "", KindLayer, KindGroup, KindItem:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "%s: unknown block type %q", path, b.Kind)
	}
	if b.Height < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s: negative height %g", path, b.Height)
	}
	if b.HeaderHeight < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "%s: negative header height %g", path, b.HeaderHeight)
	}
	for i, c := range b.Items {
		if err := validateBlock(c, fmt.Sprintf("%s.items[%d]", path, i), depth+1); err != nil {
			return err
		}
	}
	return nil
}
