// internal/state/fingerprint.go
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Fingerprint hashes the given files, keyed by their path relative to root,
// so the digest is stable across checkouts and independent of argument order.
func Fingerprint(root string, files []string) (string, error) {
	rel := make([]string, 0, len(files))
	byRel := make(map[string]string, len(files))
	for _, f := range files {
		r, err := filepath.Rel(root, f)
		if err != nil {
			r = f
		}
		r = filepath.ToSlash(r)
		if _, dup := byRel[r]; dup {
			continue
		}
		byRel[r] = f
		rel = append(rel, r)
	}
	sort.Strings(rel)

	h := sha256.New()
	for _, r := range rel {
		fmt.Fprintf(h, "%s\x00", r)
		if err := hashFile(h, byRel[r]); err != nil {
			return "", err
		}
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func hashFile(w io.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return nil
}

// ProjectKey derives a short, stable key for a project directory.
func ProjectKey(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	sum := sha256.Sum256([]byte(filepath.ToSlash(abs)))
	return filepath.Base(abs) + "-" + hex.EncodeToString(sum[:])[:12]
}
