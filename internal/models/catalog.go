package models

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const repositoryBase = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Info describes one known model.
type Info struct {
	Name string
	// Size is the approximate download size, for display.
	Size string
	URL  string
}

var builtin = []Info{
	{Name: "tiny", Size: "39 MB"},
	{Name: "base", Size: "142 MB"},
	{Name: "small", Size: "466 MB"},
	{Name: "medium", Size: "1.5 GB"},
	{Name: "large-v1", Size: "2.9 GB"},
	{Name: "large-v2", Size: "2.9 GB"},
	{Name: "large-v3", Size: "2.9 GB"},
	{Name: "large-v3-turbo", Size: "1.6 GB"},
}

func init() {
	for i := range builtin {
		builtin[i].URL = fmt.Sprintf("%s/%s", repositoryBase, FileName(builtin[i].Name))
	}
}

// Builtin returns the known models in catalog order.
func Builtin() []Info {
	out := make([]Info, len(builtin))
	copy(out, builtin)
	return out
}

// Lookup finds a builtin model by name.
func Lookup(name string) (Info, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, info := range builtin {
		if info.Name == name {
			return info, true
		}
	}
	return Info{}, false
}

// FileName returns the on-disk file name for a model.
func FileName(name string) string {
	return "ggml-" + name + ".bin"
}

// Path returns the expected location of a model inside modelsDir.
func Path(modelsDir, name string) string {
	return filepath.Join(modelsDir, FileName(name))
}

// IsDownloaded reports whether the model file is present locally. Presence
// only; validation happens when the model is bound for inference.
func IsDownloaded(modelsDir, name string) bool {
	info, err := os.Stat(Path(modelsDir, name))
	return err == nil && !info.IsDir()
}

// Downloaded returns the names of builtin models present in modelsDir.
func Downloaded(modelsDir string) []string {
	var names []string
	for _, info := range builtin {
		if IsDownloaded(modelsDir, info.Name) {
			names = append(names, info.Name)
		}
	}
	return names
}
