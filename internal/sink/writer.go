package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"go-zhipin-crawler/internal/crawl"
)

// Writer emits each job as one JSON line, suitable for stdout or any
// stream a caller supplies.
type Writer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) Emit(ctx context.Context, jobs []crawl.Job) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, job := range jobs {
		if err := w.enc.Encode(job); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Close(ctx context.Context) error { return nil }
