package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go-zhipin-crawler/internal/crawl"
)

// File collects every batch and writes one dated JSON results file on
// Close, named job-search-YYYY-MM-DD.json under dir.
type File struct {
	mu   sync.Mutex
	dir  string
	jobs []crawl.Job
}

func NewFile(dir string) *File {
	return &File{dir: dir}
}

func (f *File) Emit(ctx context.Context, jobs []crawl.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, jobs...)
	return nil
}

func (f *File) Close(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.jobs) == 0 {
		return nil
	}
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	data, err := json.MarshalIndent(f.jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	name := fmt.Sprintf("job-search-%s.json", time.Now().Format("2006-01-02"))
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
