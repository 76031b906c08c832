// Package photos stores uploaded post images on the local filesystem.
package photos

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/joe-ervin05/myblog/tools"
)

// Store keeps uploaded photos in Dir, staging each upload in TmpDir first.
type Store struct {
	Dir    string
	TmpDir string

	rename func(oldpath, newpath string) error
	log    *slog.Logger
}

// NewStore creates the photo directory if needed. An empty tmpDir stages
// uploads in the OS temp directory.
func NewStore(dir, tmpDir string, log *slog.Logger) (*Store, error) {
	if tmpDir == "" {
		tmpDir = os.TempDir()
	}

	for _, d := range []string{dir, tmpDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("%w: %w", tools.ErrUpload, err)
		}
	}

	return &Store{
		Dir:    dir,
		TmpDir: tmpDir,
		rename: os.Rename,
		log:    log.With(slog.String("component", "photos")),
	}, nil
}

// BaseName returns the last element of a client-supplied filename, splitting
// on both '/' and '\' since browsers on Windows send full paths.
func BaseName(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func validName(name string) bool {
	return name != "" && name != "." && name != ".."
}

// Save streams r into a temp file and then moves it into Dir under the base
// name of name, overwriting any photo already stored there. It returns the
// stored filename.
func (s *Store) Save(name string, r io.Reader) (string, error) {
	base := BaseName(name)
	if !validName(base) {
		return "", fmt.Errorf("%w: %q", tools.ErrInvalidFilename, name)
	}

	tmpPath := filepath.Join(s.TmpDir, "upload-"+uuid.NewString())

	if err := writeFile(tmpPath, r); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("%w: %w", tools.ErrUpload, err)
	}

	dst := filepath.Join(s.Dir, base)

	if err := s.rename(tmpPath, dst); err != nil {
		// rename fails across devices; copy then drop the temp file
		s.log.Debug("rename failed, copying upload", slog.String("file", base), slog.Any("error", err))

		if err := copyFile(tmpPath, dst); err != nil {
			os.Remove(tmpPath)
			return "", fmt.Errorf("%w: %w", tools.ErrUpload, err)
		}

		if err := os.Remove(tmpPath); err != nil {
			s.log.Warn("failed to remove temporary upload", slog.String("path", tmpPath), slog.Any("error", err))
		}
	}

	s.log.Info("photo stored", slog.String("file", base))

	return base, nil
}

// Open opens a stored photo by base name.
func (s *Store) Open(name string) (*os.File, error) {
	if !validName(name) || name != BaseName(name) {
		return nil, tools.NotFoundErr(name)
	}

	f, err := os.Open(filepath.Join(s.Dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, tools.NotFoundErr(name)
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, tools.NotFoundErr(name)
	}

	return f, nil
}

// ContentType maps a photo filename to the content type it is served with.
func ContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}

func writeFile(path string, r io.Reader) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
