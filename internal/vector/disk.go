package vector

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/hyperjump/coachrag/internal/config"
)

// LocalPaths returns the files and directories a local backend keeps on disk.
// Remote and in-memory backends have none.
func LocalPaths(cfg *config.VectorStoreConfig) []string {
	switch StoreType(cfg.Type) {
	case StoreTypeSQLite:
		p := cfg.SQLite.Path
		return []string{p, p + "-wal", p + "-shm"}
	case StoreTypeBleve:
		return []string{cfg.Bleve.Path}
	default:
		return nil
	}
}

// DiskUsage returns the bytes used by the configured backend's local files.
func DiskUsage(cfg *config.VectorStoreConfig) (int64, error) {
	return diskUsageBytes(LocalPaths(cfg)...)
}

// diskUsageBytes sums file sizes under paths. Missing and empty paths count as zero.
func diskUsageBytes(paths ...string) (int64, error) {
	var total int64
	for _, p := range paths {
		if p == "" {
			continue
		}
		err := filepath.WalkDir(p, func(_ string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return err
			}
			total += info.Size()
			return nil
		})
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, err
		}
	}
	return total, nil
}
