package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"orderwalk/internal/types"
)

// FileExporter saves exported artifacts into a directory.
type FileExporter struct {
	dir    string
	logger types.Logger
}

// NewFileExporter creates an exporter writing into dir
func NewFileExporter(dir string, logger types.Logger) *FileExporter {
	return &FileExporter{dir: dir, logger: logger}
}

// Export writes content to dir/filename. Only the base name of filename is
// used. The mime type is recorded in the log only.
func (e *FileExporter) Export(ctx context.Context, filename, mimeType string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("invalid export file name %q", filename)
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(e.dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	e.logger.Infof("Saved %s (%s, %d bytes)", path, mimeType, len(content))
	return nil
}
