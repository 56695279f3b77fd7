package writeback

import (
	"fmt"
	"os"
	"path"

	billy "github.com/go-git/go-billy/v5"
)

const defaultFileMode os.FileMode = 0o644

// WriteFile replaces name with data atomically: content is written to a temp
// file in the same directory first, then renamed over the target. An existing
// file's permissions are preserved where the filesystem supports chmod.
func WriteFile(fs billy.Filesystem, name string, data []byte) error {
	dir := path.Dir(name)
	if dir != "." && dir != "/" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir %s: %w", dir, err)
		}
	}

	mode := defaultFileMode
	if info, err := fs.Stat(name); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := fs.TempFile(dir, ".rbxforge-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	if ch, ok := fs.(billy.Change); ok {
		_ = ch.Chmod(tmpName, mode) // best-effort permission sync
	}

	if err := fs.Rename(tmpName, name); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
