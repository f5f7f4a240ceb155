package glb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
)

// ContainerError reports a GLB buffer whose header or chunks are malformed
type ContainerError struct {
	Offset int
	Reason string
}

func (e *ContainerError) Error() string {
	return fmt.Sprintf("invalid GLB at offset %d: %s", e.Offset, e.Reason)
}

// Layout describes the chunks of a GLB buffer
type Layout struct {
	Version    uint32
	Total      int
	JSONLength int
	BINLength  int
	// JSON is the JSON chunk payload including trailing padding
	JSON []byte
	// BIN is the binary chunk payload
	BIN []byte
}

// Inspect validates the container framing of data and returns its chunks.
// It expects exactly the JSON chunk followed by an optional BIN chunk.
func Inspect(data []byte) (Layout, error) {
	var layout Layout

	if len(data) < HeaderLength+ChunkHeaderLength {
		return layout, &ContainerError{Offset: 0, Reason: fmt.Sprintf("%d bytes is too short for a GLB header", len(data))}
	}
	if magic := binary.LittleEndian.Uint32(data); magic != Magic {
		return layout, &ContainerError{Offset: 0, Reason: fmt.Sprintf("bad magic 0x%08X", magic)}
	}
	layout.Version = binary.LittleEndian.Uint32(data[4:])
	if layout.Version != Version {
		return layout, &ContainerError{Offset: 4, Reason: fmt.Sprintf("unsupported version %d", layout.Version)}
	}
	layout.Total = int(binary.LittleEndian.Uint32(data[8:]))
	if layout.Total != len(data) {
		return layout, &ContainerError{Offset: 8, Reason: fmt.Sprintf("declared length %d, buffer has %d", layout.Total, len(data))}
	}

	offset := HeaderLength
	payload, err := readChunk(data, offset, ChunkJSON)
	if err != nil {
		return layout, err
	}
	layout.JSON = payload
	layout.JSONLength = len(payload)
	offset += ChunkHeaderLength + len(payload)

	if offset == len(data) {
		return layout, nil
	}

	payload, err = readChunk(data, offset, ChunkBIN)
	if err != nil {
		return layout, err
	}
	layout.BIN = payload
	layout.BINLength = len(payload)
	offset += ChunkHeaderLength + len(payload)

	if offset != len(data) {
		return layout, &ContainerError{Offset: offset, Reason: fmt.Sprintf("%d unexpected trailing bytes", len(data)-offset)}
	}

	return layout, nil
}

// ReadDocument inspects data and parses its JSON chunk
func ReadDocument(data []byte) (*Document, Layout, error) {
	layout, err := Inspect(data)
	if err != nil {
		return nil, layout, err
	}

	var doc Document
	if err := json.Unmarshal(bytes.TrimRight(layout.JSON, " "), &doc); err != nil {
		return nil, layout, fmt.Errorf("failed to parse GLB JSON chunk: %w", err)
	}

	return &doc, layout, nil
}

func readChunk(data []byte, offset int, chunkType uint32) ([]byte, error) {
	if len(data)-offset < ChunkHeaderLength {
		return nil, &ContainerError{Offset: offset, Reason: "truncated chunk header"}
	}

	length := int(binary.LittleEndian.Uint32(data[offset:]))
	if got := binary.LittleEndian.Uint32(data[offset+4:]); got != chunkType {
		return nil, &ContainerError{Offset: offset + 4, Reason: fmt.Sprintf("chunk type 0x%08X, want 0x%08X", got, chunkType)}
	}
	if length%4 != 0 {
		return nil, &ContainerError{Offset: offset, Reason: fmt.Sprintf("chunk length %d is not 4 byte aligned", length)}
	}

	start := offset + ChunkHeaderLength
	if length > len(data)-start {
		return nil, &ContainerError{Offset: offset, Reason: fmt.Sprintf("chunk length %d overruns buffer", length)}
	}

	return data[start : start+length], nil
}
