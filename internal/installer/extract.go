package installer

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractArchive unpacks an archive into dest and returns the sorted
// relative paths of all regular files written. The format is inferred from
// the file extension; files that are not a recognized archive are treated as
// a raw binary and copied into dest executable.
func ExtractArchive(archivePath, dest string) ([]string, error) {
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dest, err)
	}

	lower := strings.ToLower(archivePath)
	var (
		files []string
		err   error
	)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		files, err = extractTar(archivePath, dest, true)
	case strings.HasSuffix(lower, ".tar"):
		files, err = extractTar(archivePath, dest, false)
	case strings.HasSuffix(lower, ".zip"):
		files, err = extractZip(archivePath, dest)
	case strings.HasSuffix(lower, ".gz"):
		files, err = extractGzipFile(archivePath, dest)
	default:
		files, err = copyRawBinary(archivePath, dest)
	}
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func extractTar(archivePath, dest string, gzipped bool) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	var reader io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("reading gzip %s: %w", archivePath, err)
		}
		defer gz.Close()
		reader = gz
	}

	var files []string
	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar %s: %w", archivePath, err)
		}

		rel, err := safeRelPath(hdr.Name)
		if err != nil {
			return nil, err
		}

		target := filepath.Join(dest, rel)
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("creating directory %s: %w", target, err)
			}
		case tar.TypeReg:
			if err := writeFileFrom(target, tr, os.FileMode(hdr.Mode).Perm()); err != nil {
				return nil, err
			}
			files = append(files, rel)
		}
		// Symlinks and other entry types are skipped.
	}

	return files, nil
}

func extractZip(archivePath, dest string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening zip %s: %w", archivePath, err)
	}
	defer zr.Close()

	var files []string
	for _, entry := range zr.File {
		rel, err := safeRelPath(entry.Name)
		if err != nil {
			return nil, err
		}

		target := filepath.Join(dest, rel)
		if entry.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("creating directory %s: %w", target, err)
			}
			continue
		}

		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip entry %s: %w", entry.Name, err)
		}
		writeErr := writeFileFrom(target, rc, entry.Mode().Perm())
		rc.Close()
		if writeErr != nil {
			return nil, writeErr
		}
		files = append(files, rel)
	}

	return files, nil
}

// extractGzipFile handles a bare .gz wrapping a single binary.
func extractGzipFile(archivePath, dest string) ([]string, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("reading gzip %s: %w", archivePath, err)
	}
	defer gz.Close()

	name := strings.TrimSuffix(filepath.Base(archivePath), ".gz")
	if err := writeFileFrom(filepath.Join(dest, name), gz, 0755); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

// copyRawBinary treats the downloaded file as the executable itself.
func copyRawBinary(archivePath, dest string) ([]string, error) {
	src, err := os.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", archivePath, err)
	}
	defer src.Close()

	name := filepath.Base(archivePath)
	if err := writeFileFrom(filepath.Join(dest, name), src, 0755); err != nil {
		return nil, err
	}
	return []string{name}, nil
}

func writeFileFrom(target string, r io.Reader, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", target, err)
	}

	// Zip entries and some tarballs carry no permission bits.
	if perm == 0 {
		perm = 0644
	}

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		return fmt.Errorf("writing %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", target, err)
	}
	return nil
}

// safeRelPath normalizes an archive entry path and rejects traversal.
func safeRelPath(name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("archive entry escapes destination: %s", name)
	}
	return rel, nil
}
