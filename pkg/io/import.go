package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/legendpack/pkg/errors"
	"github.com/matzehuels/legendpack/pkg/legend"
)

// Document is a decoded legend document.
type Document struct {
	// MaxSections and MaxSectionHeight are optional hints carried by the
	// document. Zero means "not set".
	MaxSections      int             `json:"maxSections,omitempty"`
	MaxSectionHeight float64         `json:"maxSectionHeight,omitempty"`
	Layers           []*legend.Block `json:"layers"`
}

// ReadJSON decodes a legend document from r.
//
// ReadJSON returns an INVALID_FORMAT error when the JSON is malformed or is
// neither an array nor an object, and an INVALID_INPUT error when the block
// tree fails [legend.Validate]. An empty layer list is not an error.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "empty document")
	}

	var doc Document
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &doc.Layers); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode layers")
		}
	case '{':
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode document")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "document must be a JSON array or object")
	}

	if err := legend.Validate(doc.Layers); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ImportJSON reads a legend document from the file at path.
//
// A missing file yields a FILE_NOT_FOUND error; other failures are those of
// [ReadJSON], wrapped with the path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
