package whisper

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ggml model files start with this magic, stored little-endian.
const ggmlMagic = 0x67676d6c

// LoadError reports a model file that could not be bound.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Model is a handle on a validated ggml model file. The handle itself is
// cheap metadata; each concurrent inference run binds the file separately,
// so a Model may be shared across jobs but execution state never is.
type Model struct {
	Path string
	Size int64
}

// LoadModel validates and binds a model file. It fails if the path does not
// exist or the file does not carry the ggml magic.
func LoadModel(path string) (*Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &LoadError{Path: path, Err: errors.New("is a directory")}
	}

	var magic uint32
	if err := binary.Read(file, binary.LittleEndian, &magic); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = errors.New("file too short to be a model image")
		}
		return nil, &LoadError{Path: path, Err: err}
	}
	if magic != ggmlMagic {
		return nil, &LoadError{Path: path, Err: fmt.Errorf("not a ggml model image (magic 0x%08x)", magic)}
	}

	return &Model{Path: path, Size: info.Size()}, nil
}
