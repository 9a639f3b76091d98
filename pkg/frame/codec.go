package frame

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/framex/pkg/errors"
)

// Format identifies a frame file encoding
type Format string

const (
	FormatJSON  Format = "json"
	FormatArrow Format = "arrow"
	FormatCSV   Format = "csv"
	FormatAvro  Format = "avro"
)

// ParseFormat converts a user supplied format name
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		return FormatJSON, nil
	case FormatArrow, "ipc", "feather":
		return FormatArrow, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatAvro:
		return FormatAvro, nil
	}
	return "", errors.Newf(errors.ErrorTypeConfig, "unknown frame format %q", name)
}

// FormatFromPath guesses the format from the file extension, defaulting to JSON.
// Compression extensions must already be stripped.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSON
}

// Decode reads frames in the given format. Only JSON documents can hold more
// than one frame; name is used for formats that do not store one.
func Decode(r io.Reader, format Format, name string) ([]*Frame, error) {
	var (
		f   *Frame
		err error
	)

	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatArrow:
		f, err = ReadArrow(r)
	case FormatCSV:
		f, err = ReadCSV(r, name)
	case FormatAvro:
		f, err = ReadAvro(r)
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown frame format %q", format)
	}
	if err != nil {
		return nil, err
	}
	if f.Name == "" {
		f.Name = name
	}
	return []*Frame{f}, nil
}

// Encode writes frames in the given format
func Encode(w io.Writer, format Format, frames []*Frame) error {
	if format == FormatJSON {
		return WriteJSON(w, frames, true)
	}

	if len(frames) != 1 {
		return errors.Newf(errors.ErrorTypeConfig, "%s output holds exactly one frame, got %d", format, len(frames))
	}

	switch format {
	case FormatArrow:
		return WriteArrow(w, frames[0])
	case FormatCSV:
		return WriteCSV(w, frames[0])
	case FormatAvro:
		return WriteAvro(w, frames[0])
	}
	return errors.Newf(errors.ErrorTypeConfig, "unknown frame format %q", format)
}
