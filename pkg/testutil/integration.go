package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/framex/pkg/compression"
	"github.com/ajitpratap0/framex/pkg/frame"
)

// IntegrationTestSuite provides base functionality for integration tests
type IntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	cancel    context.CancelFunc
	tempDir   string
	startTime time.Time
}

// SetupSuite runs before all tests in the suite
func (s *IntegrationTestSuite) SetupSuite() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 5*time.Minute)
	s.startTime = time.Now()

	tempDir, err := os.MkdirTemp("", "framex-test-*")
	require.NoError(s.T(), err)
	s.tempDir = tempDir

	s.T().Logf("Integration test suite started in %s", s.tempDir)
}

// TearDownSuite runs after all tests in the suite
func (s *IntegrationTestSuite) TearDownSuite() {
	s.cancel()

	if s.tempDir != "" {
		os.RemoveAll(s.tempDir)
	}

	s.T().Logf("Integration test suite completed in %v", time.Since(s.startTime))
}

// Context returns the test context
func (s *IntegrationTestSuite) Context() context.Context {
	return s.ctx
}

// TempDir returns the temporary directory path
func (s *IntegrationTestSuite) TempDir() string {
	return s.tempDir
}

// CreateTempFile creates a temporary file with content
func (s *IntegrationTestSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.tempDir, name)
	err := os.WriteFile(path, content, 0644)
	require.NoError(s.T(), err)
	return path
}

// WriteFrameFile encodes frames into dir/name. The format and compression
// follow the file name, e.g. "logs.arrow.zst".
func WriteFrameFile(t *testing.T, dir, name string, frames ...*frame.Frame) string {
	t.Helper()

	alg, rest := compression.FromPath(name)
	var buf bytes.Buffer
	require.NoError(t, frame.Encode(&buf, frame.FormatFromPath(rest), frames))

	data, err := compression.Compress(buf.Bytes(), alg, compression.Default)
	require.NoError(t, err)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// ReadFrameFile decodes a file written by WriteFrameFile or a pipeline run
func ReadFrameFile(t *testing.T, path string) []*frame.Frame {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	alg, rest := compression.FromPath(path)
	raw, err := compression.Decompress(data, alg)
	require.NoError(t, err)

	frames, err := frame.Decode(bytes.NewReader(raw), frame.FormatFromPath(rest), filepath.Base(rest))
	require.NoError(t, err)
	return frames
}

// IntegrationTest marks a test as an integration test
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}
