package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/ajitpratap0/framex/pkg/compression"
	"github.com/ajitpratap0/framex/pkg/config"
	"github.com/ajitpratap0/framex/pkg/errors"
	"github.com/ajitpratap0/framex/pkg/frame"
	"github.com/ajitpratap0/framex/pkg/framesource"
)

// Source loads the input frames of a run
type Source interface {
	Load(ctx context.Context) ([]*frame.Frame, error)
	String() string
}

// NewSource returns the source described by cfg
func NewSource(name string, cfg config.InputConfig) Source {
	if cfg.SQL != nil {
		return &SQLSource{
			Name:   name,
			Driver: cfg.SQL.Driver,
			DSN:    cfg.SQL.DSN,
			Query:  cfg.SQL.Query,
		}
	}
	return &FileSource{
		Path:        cfg.Path,
		Format:      cfg.Format,
		Compression: cfg.Compression,
	}
}

// FileSource reads frames from a possibly compressed frame file. Format and
// compression default to the ones implied by the file extension.
type FileSource struct {
	Path        string
	Format      string
	Compression string
}

// Load reads all frames of the file
func (s *FileSource) Load(_ context.Context) ([]*frame.Frame, error) {
	alg, format, rest, err := fileEncoding(s.Path, s.Format, s.Compression)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(s.Path) //nolint:gosec // G304: path comes from the pipeline configuration
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open input").
			WithDetail("path", s.Path)
	}
	defer file.Close()

	r, err := compression.NewReader(file, alg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to open compressed input").
			WithDetail("path", s.Path)
	}
	defer r.Close()

	name := strings.TrimSuffix(filepath.Base(rest), filepath.Ext(rest))
	return frame.Decode(r, format, name)
}

func (s *FileSource) String() string {
	return "file:" + s.Path
}

// SQLSource reads one frame from a database query
type SQLSource struct {
	Name   string
	Driver string
	DSN    string
	Query  string
}

// Load runs the query
func (s *SQLSource) Load(ctx context.Context) ([]*frame.Frame, error) {
	db, err := framesource.Open(ctx, s.Driver, s.DSN)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	f, err := framesource.Query(ctx, db, s.Name, s.Query)
	if err != nil {
		return nil, err
	}
	return []*frame.Frame{f}, nil
}

func (s *SQLSource) String() string {
	return "sql:" + s.Driver
}

// fileEncoding resolves the compression and format of path. Explicit
// settings win over the extension; rest is path without the compression
// extension.
func fileEncoding(path, format, alg string) (compression.Algorithm, frame.Format, string, error) {
	algorithm, rest := compression.FromPath(path)
	if alg != "" {
		parsed, err := compression.Parse(alg)
		if err != nil {
			return "", "", "", errors.Wrap(err, errors.ErrorTypeConfig, "invalid compression")
		}
		algorithm = parsed
	}

	f := frame.FormatFromPath(rest)
	if format != "" {
		parsed, err := frame.ParseFormat(format)
		if err != nil {
			return "", "", "", err
		}
		f = parsed
	}
	return algorithm, f, rest, nil
}
