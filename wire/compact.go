package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/gogpu/outline/geom"
)

// Record layout constants.
const (
	RecordFields = 7
	RecordSize   = RecordFields * 8
)

// Compact encoding errors.
var (
	// ErrShortBuffer is returned when a buffer is not a whole number of records.
	ErrShortBuffer = errors.New("wire: buffer is not a multiple of the record size")

	// ErrNameMismatch is returned when the name slice does not match the record count.
	ErrNameMismatch = errors.New("wire: name count does not match record count")
)

// OutlineRecord is one decoded compact outline.
type OutlineRecord struct {
	InstanceKey uint64
	Count       int
	Rect        geom.Rect
	Committed   bool
	Name        string
}

// PackOutlines appends recs to dst in the compact encoding and returns the
// grown buffer together with the parallel name slice.
//
// Instance keys are stored as float64 and must stay below 2^53 to round-trip.
func PackOutlines(dst []byte, recs []OutlineRecord) ([]byte, []string) {
	names := make([]string, len(recs))
	dst = growBytes(dst, len(recs)*RecordSize)
	for i, r := range recs {
		committed := 0.0
		if r.Committed {
			committed = 1
		}
		for _, v := range [RecordFields]float64{
			float64(r.InstanceKey),
			float64(r.Count),
			r.Rect.X, r.Rect.Y, r.Rect.Width, r.Rect.Height,
			committed,
		} {
			dst = binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
		}
		names[i] = r.Name
	}
	return dst, names
}

// UnpackOutlines decodes a buffer produced by PackOutlines.
func UnpackOutlines(buf []byte, names []string) ([]OutlineRecord, error) {
	if len(buf)%RecordSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortBuffer, len(buf))
	}
	n := len(buf) / RecordSize
	if len(names) != n {
		return nil, fmt.Errorf("%w: %d names for %d records", ErrNameMismatch, len(names), n)
	}

	recs := make([]OutlineRecord, n)
	var f [RecordFields]float64
	for i := range recs {
		rec := buf[i*RecordSize : (i+1)*RecordSize]
		for j := range f {
			f[j] = math.Float64frombits(binary.LittleEndian.Uint64(rec[j*8:]))
		}
		recs[i] = OutlineRecord{
			InstanceKey: uint64(f[0]),
			Count:       int(f[1]),
			Rect:        geom.Rect{X: f[2], Y: f[3], Width: f[4], Height: f[5]},
			Committed:   f[6] != 0,
			Name:        names[i],
		}
	}
	return recs, nil
}

func growBytes(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b
	}
	grown := make([]byte, len(b), len(b)+n)
	copy(grown, b)
	return grown
}
