// internal/ingest/loader.go
package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/perfdash/backend-go/internal/domain"
)

// LoadDir parses every .csv file under root into one merged record
// collection. Files are parsed concurrently, bounded by workers; the merge
// order follows the sorted file list so the resulting collection (and its
// content hash) is deterministic. onFile, when non-nil, is called once per
// completed file.
func LoadDir(ctx context.Context, root string, workers int, onFile func(path string)) ([]domain.Record, error) {
	files, err := CollectCSVFiles(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}
	if workers < 1 {
		workers = 1
	}

	sem := semaphore.NewWeighted(int64(workers))
	perFile := make([][]domain.Record, len(files))
	errs := make([]error, len(files))
	var wg sync.WaitGroup

	for i, path := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			defer sem.Release(1)

			records, err := loadFile(path)
			if err != nil {
				errs[i] = fmt.Errorf("parsing %s: %w", path, err)
				return
			}
			perFile[i] = records
			if onFile != nil {
				onFile(path)
			}
		}(i, path)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	var merged []domain.Record
	for _, records := range perFile {
		merged = append(merged, records...)
	}
	return merged, nil
}

// CollectCSVFiles walks root and returns every .csv path, sorted.
func CollectCSVFiles(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if filepath.Ext(path) == ".csv" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

func loadFile(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}
