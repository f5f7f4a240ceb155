package stl

import (
	"encoding/binary"
	"fmt"
	"math"
)

// reader is a little-endian cursor over an immutable byte slice. Every
// read is bounds-checked and advances the offset by the field width.
type reader struct {
	data []byte
	off  int
}

func newReader(data []byte) *reader {
	return &reader{data: data}
}

func (r *reader) remaining() int {
	return len(r.data) - r.off
}

func (r *reader) need(n int) error {
	if r.remaining() < n {
		return fmt.Errorf("read of %d bytes at offset %d overruns %d byte buffer", n, r.off, len(r.data))
	}
	return nil
}

func (r *reader) skip(n int) error {
	if err := r.need(n); err != nil {
		return err
	}
	r.off += n
	return nil
}

func (r *reader) uint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) float32() (float32, error) {
	bits, err := r.uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// vector reads three consecutive float32 values
func (r *reader) vector() ([3]float32, error) {
	var v [3]float32
	if err := r.need(12); err != nil {
		return v, err
	}
	for i := range v {
		v[i], _ = r.float32()
	}
	return v, nil
}
