package engine

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// copyTree copies src to dst and returns the bytes of regular file content
// written. Directories are copied recursively and symlinks are recreated
// rather than followed.
func copyTree(src, dst string) (int64, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return 0, err
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return 0, err
		}
		return 0, os.Symlink(target, dst)

	case info.IsDir():
		if err := os.MkdirAll(dst, info.Mode().Perm()|0o700); err != nil {
			return 0, err
		}
		entries, err := os.ReadDir(src)
		if err != nil {
			return 0, err
		}
		var total int64
		for _, e := range entries {
			n, err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()))
			total += n
			if err != nil {
				return total, err
			}
		}
		return total, nil

	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode().Perm())
	}
	return 0, fmt.Errorf("unsupported file type %s", info.Mode().Type())
}

func copyFile(src, dst string, perm fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm|0o200)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, err
	}
	return n, out.Close()
}

// copyContents copies the entries of dir src into dir dst.
func copyContents(src, dst string) (int64, error) {
	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, e := range entries {
		n, err := copyTree(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name()))
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// rename is os.Rename, swapped out in tests to force the cross-device path.
var rename = os.Rename

// moveDir renames src to dst, falling back to copy and delete across
// filesystems. A failed copy leaves src untouched and dst absent.
func moveDir(src, dst string) error {
	err := rename(src, dst)
	if err == nil {
		return nil
	}
	var le *os.LinkError
	if !errors.As(err, &le) {
		return err
	}
	if _, err := copyTree(src, dst); err != nil {
		return errors.Join(fmt.Errorf("move %s: %w", src, err), os.RemoveAll(dst))
	}
	return os.RemoveAll(src)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
