// Package attachments copies photo files into app-private storage so a
// task's photo reference stays valid after the source disappears.
package attachments

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Copier copies source images into the attachments directory and hands back
// a stable path. A failed copy returns an error and the caller leaves the
// task's photo attachment unset.
type Copier struct {
	dir string
	log *slog.Logger
}

func NewCopier(dir string, log *slog.Logger) *Copier {
	return &Copier{dir: dir, log: log.With("component", "attachments")}
}

// Copy duplicates the file at src into the attachments directory under a
// fresh name, keeping the original extension, and returns the new path.
func (c *Copier) Copy(src string) (string, error) {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("attachments dir: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("open source image: %w", err)
	}
	defer in.Close()

	dst := filepath.Join(c.dir, uuid.NewString()+filepath.Ext(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return "", fmt.Errorf("copy attachment: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("close attachment: %w", err)
	}

	c.log.Debug("photo copied", "src", src, "dst", dst)
	return dst, nil
}

// Remove deletes a previously copied attachment. Missing files are fine.
func (c *Copier) Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
