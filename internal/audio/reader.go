package audio

import (
	"errors"
	"fmt"
	"os"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ReadWavAsFloat64 reads a PCM WAV file and returns mono samples normalized
// to [-1,1] plus the sample rate. Stereo input is downmixed by averaging the
// channels.
func ReadWavAsFloat64(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("WAV file contains no samples")
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}

	samples, err := NormalizeBuffer(buf, bitDepth)
	if err != nil {
		return nil, 0, err
	}
	return samples, buf.Format.SampleRate, nil
}

// NormalizeBuffer converts an integer PCM buffer into mono float64 samples in
// [-1,1]. Stereo is downmixed by averaging; other channel layouts are
// rejected.
func NormalizeBuffer(buf *gaudio.IntBuffer, bitDepth int) ([]float64, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("nil PCM buffer")
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("unsupported bit depth: %d", bitDepth)
	}
	scale := 1.0 / float64(int64(1)<<(uint(bitDepth)-1))

	switch buf.Format.NumChannels {
	case 1:
		out := make([]float64, len(buf.Data))
		for i, v := range buf.Data {
			out[i] = float64(v) * scale
		}
		return out, nil
	case 2:
		frames := len(buf.Data) / 2
		out := make([]float64, frames)
		for i := 0; i < frames; i++ {
			l := float64(buf.Data[2*i]) * scale
			r := float64(buf.Data[2*i+1]) * scale
			out[i] = (l + r) * 0.5
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported channel count %d: only mono/stereo supported", buf.Format.NumChannels)
	}
}
