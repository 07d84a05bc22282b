package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// RecordDirName is the proxy's own on-disk footprint under the proxy root.
// Discovery excludes it so the proxy never lists itself as a member.
const RecordDirName = ".repofan"

const recordFileName = "proxy.toml"

// ProxyRecord is the persisted proxy state. It is the only thing repofan
// writes to disk: the proxy-mode flag plus the member repositories
// discovered at init/refresh time, as sorted root-relative paths.
//
// Executors treat the record as read-only; only init and refresh write it.
type ProxyRecord struct {
	ProxyMode    bool     `toml:"proxy-mode"`
	Repositories []string `toml:"repositories"`
}

// RecordPath returns the fixed record location under a proxy root.
func RecordPath(root string) string {
	return filepath.Join(root, RecordDirName, recordFileName)
}

// HasRecord reports whether dir is configured as a proxy root.
func HasRecord(dir string) bool {
	info, err := os.Stat(RecordPath(dir))
	return err == nil && info.Mode().IsRegular()
}

// LoadRecord reads the proxy record under root.
func LoadRecord(root string) (*ProxyRecord, error) {
	var rec ProxyRecord
	if _, err := toml.DecodeFile(RecordPath(root), &rec); err != nil {
		return nil, fmt.Errorf("load proxy record: %w", err)
	}
	if !rec.ProxyMode {
		return nil, fmt.Errorf("proxy record at %s does not have proxy-mode enabled", RecordPath(root))
	}
	return &rec, nil
}

// Save writes the proxy record under root, creating the record directory
// if needed.
func (r *ProxyRecord) Save(root string) error {
	dir := filepath.Join(root, RecordDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create proxy record dir: %w", err)
	}

	f, err := os.Create(RecordPath(root))
	if err != nil {
		return fmt.Errorf("create proxy record: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("encode proxy record: %w", err)
	}
	return nil
}
