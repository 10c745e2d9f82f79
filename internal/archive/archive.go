package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/amirpz/snapkit/internal/errors"
)

// Options controls which working-tree entries end up in an archive.
type Options struct {
	// ExcludeDirs lists directory names skipped at any depth
	// (version-control metadata, build caches, prior snapshot folders).
	ExcludeDirs []string

	// ExcludeFiles lists base file names skipped at any depth.
	ExcludeFiles []string
}

// Create writes a deflate-compressed zip of the tree rooted at root to
// dest. Entry paths are relative to root with forward slashes. The archive
// being written is never included in itself, even when dest lies under
// root and no other exclusions apply.
func Create(root, dest string, opts Options) error {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return errors.Wrap(err, "failed to resolve archive destination")
	}

	out, err := os.Create(dest)
	if err != nil {
		return errors.Wrap(err, "failed to create archive file")
	}

	zw := zip.NewWriter(out)

	excludeDirs := toSet(opts.ExcludeDirs)
	excludeFiles := toSet(opts.ExcludeFiles)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if excludeFiles[d.Name()] {
			return nil
		}

		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if absPath == absDest {
			return nil
		}

		return addFile(zw, path, rel, d)
	})

	if walkErr != nil {
		_ = zw.Close()
		_ = out.Close()
		_ = os.Remove(dest)
		return errors.Wrap(walkErr, "failed to build archive")
	}

	if err := zw.Close(); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return errors.Wrap(err, "failed to finalize archive")
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return errors.Wrap(err, "failed to close archive file")
	}

	return nil
}

// addFile appends a single regular file to the archive.
func addFile(zw *zip.Writer, path, rel string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = filepath.ToSlash(rel)
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	_, err = io.Copy(w, f)
	return err
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
