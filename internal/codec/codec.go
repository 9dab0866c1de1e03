// Package codec implements the two equivalent encodings of event and
// decision batches the host may request: a textual JSON form and a compact
// binary form. Which one is active is fixed at initialization time by the
// host's configuration flags.
package codec

import (
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hpcsched/batling/internal/types"
)

// Configuration flags recognized at initialization. Any other bit set in
// the requested flags is an unsupported configuration.
const (
	FormatBinary uint32 = 1 << 0
	FormatJSON   uint32 = 1 << 1
)

// ErrUnsupportedConfiguration is returned when the host requests flags
// outside the recognized set. Initialization fails and no state is created.
var ErrUnsupportedConfiguration = errors.New("unsupported configuration flags")

// Codec encodes and decodes whole batches in one of the two formats.
type Codec interface {
	// ContentType is the MIME type the HTTP surface advertises.
	ContentType() string

	EncodeEvents(w io.Writer, batch types.EventBatch) error
	DecodeEvents(r io.Reader) (types.EventBatch, error)
	EncodeDecisions(w io.Writer, batch types.DecisionBatch) error
	DecodeDecisions(r io.Reader) (types.DecisionBatch, error)
}

// ForFlags validates the requested flags and returns the matching codec.
// Binary wins when both format bits are set, mirroring the original
// protocol's precedence.
func ForFlags(flags uint32) (Codec, error) {
	if flags&^(FormatBinary|FormatJSON) != 0 {
		return nil, fmt.Errorf("%w: %#x", ErrUnsupportedConfiguration, flags)
	}
	if flags&FormatBinary != 0 {
		return Binary{}, nil
	}
	return JSON{}, nil
}

// JSON is the textual batch encoding.
type JSON struct{}

func (JSON) ContentType() string { return "application/json" }

func (JSON) EncodeEvents(w io.Writer, batch types.EventBatch) error {
	return json.NewEncoder(w).Encode(batch)
}

func (JSON) DecodeEvents(r io.Reader) (types.EventBatch, error) {
	var batch types.EventBatch
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return types.EventBatch{}, fmt.Errorf("decode event batch: %w", err)
	}
	return batch, nil
}

func (JSON) EncodeDecisions(w io.Writer, batch types.DecisionBatch) error {
	return json.NewEncoder(w).Encode(batch)
}

func (JSON) DecodeDecisions(r io.Reader) (types.DecisionBatch, error) {
	var batch types.DecisionBatch
	if err := json.NewDecoder(r).Decode(&batch); err != nil {
		return types.DecisionBatch{}, fmt.Errorf("decode decision batch: %w", err)
	}
	return batch, nil
}

// Binary is the compact batch encoding.
type Binary struct{}

func (Binary) ContentType() string { return "application/octet-stream" }

func (Binary) EncodeEvents(w io.Writer, batch types.EventBatch) error {
	return gob.NewEncoder(w).Encode(batch)
}

func (Binary) DecodeEvents(r io.Reader) (types.EventBatch, error) {
	var batch types.EventBatch
	if err := gob.NewDecoder(r).Decode(&batch); err != nil {
		return types.EventBatch{}, fmt.Errorf("decode event batch: %w", err)
	}
	return batch, nil
}

func (Binary) EncodeDecisions(w io.Writer, batch types.DecisionBatch) error {
	return gob.NewEncoder(w).Encode(batch)
}

func (Binary) DecodeDecisions(r io.Reader) (types.DecisionBatch, error) {
	var batch types.DecisionBatch
	if err := gob.NewDecoder(r).Decode(&batch); err != nil {
		return types.DecisionBatch{}, fmt.Errorf("decode decision batch: %w", err)
	}
	return batch, nil
}
