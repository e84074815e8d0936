// Package audiofile inspects recorded WAV files: real duration for the
// too-short rejection and peak amplitude for silence detection.
package audiofile

import (
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// Duration returns the audio length computed from the WAV header.
func Duration(path string) (time.Duration, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: not a valid WAV file", path)
	}
	return dec.Duration()
}

// PeakAmplitude decodes path and returns the largest absolute sample value
// normalized to [0, 1].
func PeakAmplitude(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return 0, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return 0, err
	}
	bitDepth := int(dec.BitDepth)
	if bitDepth == 0 {
		bitDepth = 16
	}
	fullScale := float64(int64(1) << (bitDepth - 1))

	peak := 0.0
	for _, s := range buf.Data {
		v := float64(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak / fullScale, nil
}
