package distribute

import (
	"fmt"
	"os"
	"path/filepath"
)

// Clean removes the regular files in dir that appear in delivered and returns how many
// were removed. Anything not delivered stays for inspection or the next run.
func Clean(dir string, delivered []string) (int, error) {
	sent := make(map[string]struct{}, len(delivered))
	for _, p := range delivered {
		if abs, err := filepath.Abs(p); err == nil {
			sent[abs] = struct{}{}
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	removed := 0
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		path, err := filepath.Abs(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		if _, ok := sent[path]; !ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("remove %s: %w", path, err)
		}
		removed++
	}
	return removed, nil
}
