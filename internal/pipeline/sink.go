package pipeline

import (
	"context"
	"io"
	"os"

	"github.com/ajitpratap0/framex/pkg/compression"
	"github.com/ajitpratap0/framex/pkg/config"
	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/frame"
)

// Sink writes the output frames of a run
type Sink interface {
	Write(ctx context.Context, frames []*frame.Frame) error
	String() string
}

// NewSink returns the sink described by cfg; without a path frames are
// written to w as JSON
func NewSink(cfg config.OutputConfig, w io.Writer) Sink {
	if cfg.Path == "" {
		return &WriterSink{W: w}
	}
	return &FileSink{
		Path:        cfg.Path,
		Format:      cfg.Format,
		Compression: cfg.Compression,
	}
}

// FileSink writes frames to a possibly compressed frame file
type FileSink struct {
	Path        string
	Format      string
	Compression string
}

// Write encodes frames into the file, replacing it
func (s *FileSink) Write(_ context.Context, frames []*frame.Frame) (err error) {
	alg, format, _, err := fileEncoding(s.Path, s.Format, s.Compression)
	if err != nil {
		return err
	}

	file, err := os.Create(s.Path) //nolint:gosec // G304: path comes from the pipeline configuration
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create output").
			WithDetail("path", s.Path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, errors.ErrorTypeFile, "failed to close output")
		}
	}()

	w, err := compression.NewWriter(file, alg, compression.Default)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to create compressed output")
	}
	if err := frame.Encode(w, format, frames); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush compressed output")
	}
	return nil
}

func (s *FileSink) String() string {
	return "file:" + s.Path
}

// WriterSink writes frames as indented JSON
type WriterSink struct {
	W io.Writer
}

// Write encodes frames as JSON
func (s *WriterSink) Write(_ context.Context, frames []*frame.Frame) error {
	return frame.WriteJSON(s.W, frames, true)
}

func (s *WriterSink) String() string {
	return "stdout"
}
