// Package archive detects and extracts the three archive formats avm's
// upstream catalogs publish: zip, tar.gz, and tar.xz.
package archive

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gzip "github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"
)

// Type identifies a supported archive format.
type Type int

const (
	// Unknown marks a path whose suffix isn't one of the supported types.
	Unknown Type = iota
	Zip
	TarGz
	TarXz
)

// Detect classifies path by its suffix. Anything outside {.zip, .tar.gz,
// .tar.xz} is Unknown.
func Detect(path string) Type {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"):
		return TarGz
	case strings.HasSuffix(lower, ".tar.xz"):
		return TarXz
	case strings.HasSuffix(lower, ".zip"):
		return Zip
	default:
		return Unknown
	}
}

// ErrUnknownType is returned by Extract when the archive type is Unknown.
type ErrUnknownType struct{ Path string }

func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("archive: unknown archive type for %q", e.Path)
}

// Extract unpacks archivePath (of the given type) into targetDir, creating
// targetDir if necessary. Zip entries restore their stored POSIX mode on
// non-Windows platforms when present; tar entries preserve permissions and
// timestamps via the standard unpack loop.
func Extract(typ Type, archivePath, targetDir string) error {
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("archive: creating target dir: %w", err)
	}

	switch typ {
	case Zip:
		return extractZip(archivePath, targetDir)
	case TarGz:
		return extractTarGz(archivePath, targetDir)
	case TarXz:
		return extractTarXz(archivePath, targetDir)
	default:
		return &ErrUnknownType{Path: archivePath}
	}
}

func extractTarGz(archivePath, targetDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("archive: opening %s: %w", archivePath, err)
	}
	defer f.Close()

	gzr, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("archive: creating gzip reader: %w", err)
	}
	defer gzr.Close()

	return extractTarReader(tar.NewReader(gzr), targetDir)
}

func extractTarXz(archivePath, targetDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("archive: opening %s: %w", archivePath, err)
	}
	defer f.Close()

	xzr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("archive: creating xz reader: %w", err)
	}

	return extractTarReader(tar.NewReader(xzr), targetDir)
}

func extractTarReader(tr *tar.Reader, targetDir string) error {
	for {
		header, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("archive: reading tar header: %w", err)
		}

		cleanPath := strings.TrimPrefix(header.Name, "./")
		target := filepath.Join(targetDir, cleanPath)
		if !isPathWithinDirectory(target, targetDir) {
			return fmt.Errorf("archive: entry escapes destination directory: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("archive: creating parent dir for %s: %w", target, err)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return fmt.Errorf("archive: creating file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("archive: writing file %s: %w", target, err)
			}
			out.Close()
			if err := os.Chtimes(target, header.ModTime, header.ModTime); err != nil {
				// Timestamp restoration is best-effort.
				_ = err
			}
		case tar.TypeSymlink:
			if err := validateSymlinkTarget(header.Linkname, target, targetDir); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("archive: creating parent dir for symlink %s: %w", target, err)
			}
			if err := atomicSymlink(header.Linkname, target); err != nil {
				return fmt.Errorf("archive: creating symlink %s: %w", target, err)
			}
		}
	}
}

func extractZip(archivePath, targetDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("archive: opening zip %s: %w", archivePath, err)
	}
	defer r.Close()

	for _, entry := range r.File {
		cleanPath := strings.TrimPrefix(entry.Name, "./")
		target := filepath.Join(targetDir, cleanPath)
		if !isPathWithinDirectory(target, targetDir) {
			return fmt.Errorf("archive: zip entry escapes destination directory: %s", entry.Name)
		}

		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("archive: creating directory %s: %w", target, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("archive: creating parent dir for %s: %w", target, err)
		}

		rc, err := entry.Open()
		if err != nil {
			return fmt.Errorf("archive: opening zip entry %s: %w", entry.Name, err)
		}

		mode := entry.Mode()
		if mode == 0 {
			mode = 0o644
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_RDWR|os.O_TRUNC, mode)
		if err != nil {
			rc.Close()
			return fmt.Errorf("archive: creating file %s: %w", target, err)
		}

		if _, err := io.Copy(out, rc); err != nil {
			out.Close()
			rc.Close()
			return fmt.Errorf("archive: writing file %s: %w", target, err)
		}
		out.Close()
		rc.Close()
	}

	return nil
}

func isPathWithinDirectory(targetPath, basePath string) bool {
	absTarget, err := filepath.Abs(targetPath)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return false
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(os.PathSeparator))
}

func validateSymlinkTarget(linkTarget, linkLocation, destPath string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("archive: absolute symlink targets are not allowed: %s -> %s", linkLocation, linkTarget)
	}
	resolvedTarget := filepath.Join(filepath.Dir(linkLocation), linkTarget)
	if !isPathWithinDirectory(resolvedTarget, destPath) {
		return fmt.Errorf("archive: symlink target escapes destination directory: %s -> %s", linkLocation, linkTarget)
	}
	return nil
}

func atomicSymlink(target, linkPath string) error {
	tmpLink := linkPath + ".tmp"
	os.Remove(tmpLink)
	if err := os.Symlink(target, tmpLink); err != nil {
		return err
	}
	if err := os.Rename(tmpLink, linkPath); err != nil {
		os.Remove(tmpLink)
		return err
	}
	return nil
}
