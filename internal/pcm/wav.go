package pcm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

// Canonical format parameters. These must match what the transcription
// engine expects; a mismatch is a programming error, not an input error.
const (
	SampleRate    = 16000
	Channels      = 1
	BitsPerSample = 16
)

// ErrNotCanonical reports a WAV file that does not match the canonical
// mono/16kHz/16-bit PCM parameters.
var ErrNotCanonical = errors.New("audio is not canonical mono 16kHz 16-bit PCM")

const wavHeaderSize = 44

// ReadFile loads a canonical WAV file and returns its samples.
func ReadFile(path string) ([]int16, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return Decode(data)
}

// Decode parses WAV bytes, validating the canonical format.
func Decode(data []byte) ([]int16, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", ErrNotCanonical, len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE header", ErrNotCanonical)
	}

	var sampleData []byte
	sawFormat := false

	// Walk the chunk list; only "fmt " and "data" matter.
	offset := 12
	for offset+8 <= len(data) {
		chunkID := string(data[offset : offset+4])
		chunkSize := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if body+chunkSize > len(data) {
			chunkSize = len(data) - body
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return nil, fmt.Errorf("%w: truncated fmt chunk", ErrNotCanonical)
			}
			audioFormat := binary.LittleEndian.Uint16(data[body : body+2])
			channels := binary.LittleEndian.Uint16(data[body+2 : body+4])
			sampleRate := binary.LittleEndian.Uint32(data[body+4 : body+8])
			bits := binary.LittleEndian.Uint16(data[body+14 : body+16])
			if audioFormat != 1 {
				return nil, fmt.Errorf("%w: expected integer PCM, got format %d", ErrNotCanonical, audioFormat)
			}
			if channels != Channels {
				return nil, fmt.Errorf("%w: expected mono, got %d channels", ErrNotCanonical, channels)
			}
			if sampleRate != SampleRate {
				return nil, fmt.Errorf("%w: expected %d Hz, got %d Hz", ErrNotCanonical, SampleRate, sampleRate)
			}
			if bits != BitsPerSample {
				return nil, fmt.Errorf("%w: expected %d bits per sample, got %d", ErrNotCanonical, BitsPerSample, bits)
			}
			sawFormat = true
		case "data":
			sampleData = data[body : body+chunkSize]
		}

		if chunkSize%2 == 1 {
			chunkSize++
		}
		offset = body + chunkSize
	}

	if !sawFormat {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrNotCanonical)
	}
	if sampleData == nil {
		return nil, fmt.Errorf("%w: missing data chunk", ErrNotCanonical)
	}

	samples := make([]int16, len(sampleData)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(sampleData[2*i : 2*i+2]))
	}
	return samples, nil
}

// WriteFile writes samples as a canonical WAV file.
func WriteFile(path string, samples []int16) error {
	return os.WriteFile(path, Encode(samples), 0o644)
}

// Encode renders samples as canonical WAV bytes.
func Encode(samples []int16) []byte {
	dataSize := len(samples) * 2
	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	byteRate := SampleRate * Channels * BitsPerSample / 8
	blockAlign := Channels * BitsPerSample / 8

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // integer PCM
	binary.Write(buf, binary.LittleEndian, uint16(Channels))
	binary.Write(buf, binary.LittleEndian, uint32(SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(BitsPerSample))
	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	binary.Write(buf, binary.LittleEndian, samples)

	return buf.Bytes()
}

// ToFloat32 converts 16-bit samples to normalized float samples on a linear
// scale, one to one.
func ToFloat32(samples []int16) []float32 {
	out := make([]float32, len(samples))
	for i, sample := range samples {
		out[i] = float32(sample) / 32768
	}
	return out
}

// FromFloat32 converts normalized float samples back to 16-bit, clamping
// out-of-range values.
func FromFloat32(samples []float32) []int16 {
	out := make([]int16, len(samples))
	for i, sample := range samples {
		scaled := sample * 32768
		switch {
		case scaled > 32767:
			out[i] = 32767
		case scaled < -32768:
			out[i] = -32768
		default:
			out[i] = int16(scaled)
		}
	}
	return out
}
