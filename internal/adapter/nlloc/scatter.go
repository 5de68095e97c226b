package nlloc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/tremorlab/seispick/internal/domain"
)

// ReadScatter reads a NonLinLoc binary scatter file: a 16 byte header
// followed by little-endian float32 quadruples of grid x, y, z in kilometers
// and the PDF value at that sample.
func ReadScatter(r io.Reader) ([]domain.ScatterSample, error) {
	var header [4]float32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, &domain.FormatError{Format: "nlloc", Field: "scatter header",
			Err: fmt.Errorf("read: %w", err)}
	}

	var samples []domain.ScatterSample
	for {
		var row [4]float32
		err := binary.Read(r, binary.LittleEndian, &row)
		if errors.Is(err, io.EOF) {
			return samples, nil
		}
		if err != nil {
			return nil, &domain.FormatError{Format: "nlloc", Field: "scatter sample",
				Err: fmt.Errorf("read sample %d: %w", len(samples), err)}
		}
		samples = append(samples, domain.ScatterSample{
			X:   float64(row[0]),
			Y:   float64(row[1]),
			Z:   float64(row[2]),
			PDF: float64(row[3]),
		})
	}
}
