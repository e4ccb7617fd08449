package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sales-dashboard/models"
	"sales-dashboard/storage"
	"sales-dashboard/utils"
)

// DefaultChunkSize stays below the store's 500 document atomic batch limit.
const DefaultChunkSize = 400

// Progress is reported after every committed chunk. Processed and Total count
// valid documents only; rejected rows never reach the store.
type Progress struct {
	RunID     string  `json:"runId"`
	Chunk     int     `json:"chunk"`
	Chunks    int     `json:"chunks"`
	Processed int     `json:"processed"`
	Total     int     `json:"total"`
	Percent   float64 `json:"percent"`
}

// ProgressFunc receives monotonically increasing progress reports.
type ProgressFunc func(Progress)

// UploadResult summarizes a finished upload. Total is the number of input
// rows, Valid the documents that survived normalization (the Total of every
// Progress report) and Uploaded how many of those were committed.
type UploadResult struct {
	RunID    string     `json:"runId"`
	Uploaded int        `json:"uploaded"`
	Valid    int        `json:"valid"`
	Total    int        `json:"total"`
	Stats    CleanStats `json:"stats"`
}

// ChunkError reports the chunk that could not be written. Chunks before it
// stay committed.
type ChunkError struct {
	Chunk     int
	Committed int
	Remaining int
	Err       error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("upload chunk %d failed (%d committed, %d remaining): %v",
		e.Chunk, e.Committed, e.Remaining, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

// UploaderOptions configures chunking and retry.
type UploaderOptions struct {
	Collection  string
	ChunkSize   int
	MaxAttempts int
	RetryDelay  time.Duration
}

// Uploader normalizes raw upload rows and writes them to the document store
// in sequential, atomic chunks keyed by fingerprint.
type Uploader struct {
	store   storage.DocumentStore
	cleaner *Cleaner
	logger  *utils.Logger
	opts    UploaderOptions
}

func NewUploader(store storage.DocumentStore, cleaner *Cleaner, logger *utils.Logger, opts UploaderOptions) *Uploader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &Uploader{store: store, cleaner: cleaner, logger: logger, opts: opts}
}

// Upload writes every valid row. Rows sharing a fingerprint are all written
// in input order, so the later one overwrites the earlier. A chunk that still
// fails after its retries aborts the upload with a *ChunkError; ctx
// cancellation stops it before the next chunk.
func (u *Uploader) Upload(ctx context.Context, rows []models.Row, progress ProgressFunc) (UploadResult, error) {
	runID := uuid.NewString()
	sales, stats := u.cleaner.NormalizeAll(rows)
	result := UploadResult{RunID: runID, Valid: len(sales), Total: len(rows), Stats: stats}

	docs := make([]storage.Document, 0, len(sales))
	for _, s := range sales {
		docs = append(docs, storage.Document{ID: DocumentID(s.Fingerprint), Fields: s.Fields()})
	}

	chunks := Chunk(docs, u.opts.ChunkSize)
	u.logger.Info("[upload] Run %s: %d rows → %d valid sales in %d chunks (dropped %d)",
		runID, len(rows), len(docs), len(chunks), len(rows)-len(docs))

	retry := &utils.RetryConfig{
		MaxAttempts: u.opts.MaxAttempts,
		BaseDelay:   u.opts.RetryDelay,
		Logger:      u.logger,
	}

	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return result, &ChunkError{Chunk: i, Committed: result.Uploaded, Remaining: len(docs) - result.Uploaded, Err: err}
		}

		err := retry.Do(ctx, fmt.Sprintf("upload-chunk-%d", i), func() error {
			return u.store.BatchUpsert(ctx, u.opts.Collection, chunk)
		})
		if err != nil {
			u.logger.Error("[upload] Run %s: chunk %d/%d failed: %v", runID, i+1, len(chunks), err)
			return result, &ChunkError{Chunk: i, Committed: result.Uploaded, Remaining: len(docs) - result.Uploaded, Err: err}
		}

		result.Uploaded += len(chunk)
		p := Progress{
			RunID:     runID,
			Chunk:     i + 1,
			Chunks:    len(chunks),
			Processed: result.Uploaded,
			Total:     result.Valid,
			Percent:   float64(result.Uploaded) / float64(len(docs)) * 100,
		}
		u.logger.Debug("[upload] Run %s: %d/%d (%.0f%%)", runID, p.Processed, p.Total, p.Percent)
		if progress != nil {
			progress(p)
		}
	}

	u.logger.Info("[upload] Run %s complete: %d/%d valid sales uploaded (%d input rows)",
		runID, result.Uploaded, result.Valid, result.Total)
	return result, nil
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if size <= 0 {
		size = DefaultChunkSize
	}
	var out [][]T
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		out = append(out, items[i:end])
	}
	return out
}
