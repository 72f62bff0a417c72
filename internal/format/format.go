package format

import (
	"encoding/json"
	"fmt"
	"strings"

	"whisperq/internal/whisper"
)

// Kind identifies one of the supported transcript output encodings.
type Kind string

const (
	KindTxt  Kind = "txt"
	KindSrt  Kind = "srt"
	KindVtt  Kind = "vtt"
	KindJSON Kind = "json"
)

// ParseKind converts a string into a known Kind.
func ParseKind(value string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(value))) {
	case KindTxt:
		return KindTxt, nil
	case KindSrt:
		return KindSrt, nil
	case KindVtt:
		return KindVtt, nil
	case KindJSON:
		return KindJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (txt, srt, vtt, json)", value)
	}
}

// Extension returns the file extension for the kind, without the dot.
func (k Kind) Extension() string {
	return string(k)
}

// Kinds returns the supported kinds in presentation order.
func Kinds() []Kind {
	return []Kind{KindTxt, KindSrt, KindVtt, KindJSON}
}

// Render produces the textual output for segments in the requested kind.
// Segments are rendered in emission order; their validity is the engine's
// contract and is not re-checked here.
func Render(segments []whisper.Segment, kind Kind) (string, error) {
	switch kind {
	case KindTxt:
		return renderTxt(segments), nil
	case KindSrt:
		return renderSrt(segments), nil
	case KindVtt:
		return renderVtt(segments), nil
	case KindJSON:
		return renderJSON(segments)
	default:
		return "", fmt.Errorf("unsupported output format %q", string(kind))
	}
}

func renderTxt(segments []whisper.Segment) string {
	lines := make([]string, 0, len(segments))
	for _, segment := range segments {
		lines = append(lines, segment.Text)
	}
	return strings.Join(lines, "\n")
}

func renderSrt(segments []whisper.Segment) string {
	var b strings.Builder
	for i, segment := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1,
			formatTimestamp(segment.Start, ','),
			formatTimestamp(segment.End, ','),
			segment.Text,
		)
	}
	return b.String()
}

func renderVtt(segments []whisper.Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, segment := range segments {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			formatTimestamp(segment.Start, '.'),
			formatTimestamp(segment.End, '.'),
			segment.Text,
		)
	}
	return b.String()
}

type jsonSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type jsonDocument struct {
	Segments []jsonSegment `json:"segments"`
}

func renderJSON(segments []whisper.Segment) (string, error) {
	doc := jsonDocument{Segments: make([]jsonSegment, 0, len(segments))}
	for i, segment := range segments {
		doc.Segments = append(doc.Segments, jsonSegment{
			ID:    i,
			Start: float64(segment.Start) / 100,
			End:   float64(segment.End) / 100,
			Text:  segment.Text,
		})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal segments: %w", err)
	}
	return string(data), nil
}

// formatTimestamp renders a centisecond offset as HH:MM:SS<sep>mmm.
func formatTimestamp(centiseconds int64, millisSeparator byte) string {
	ms := centiseconds * 10
	return fmt.Sprintf("%02d:%02d:%02d%c%03d",
		ms/3600000,
		(ms%3600000)/60000,
		(ms%60000)/1000,
		millisSeparator,
		ms%1000,
	)
}
