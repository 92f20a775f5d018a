package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// OfficialFunc processes one official. The returned value is opaque to the
// batch processor and handed back in the OfficialResult.
type OfficialFunc func(ctx context.Context, officialID string) (interface{}, error)

// OfficialJob runs an OfficialFunc for one official
type OfficialJob struct {
	OfficialID string
	Fn         OfficialFunc
}

// Execute executes the job
func (j *OfficialJob) Execute(ctx context.Context) Result {
	value, err := j.Fn(ctx, j.OfficialID)
	return &OfficialResult{
		OfficialID: j.OfficialID,
		Value:      value,
		Error:      err,
	}
}

// OfficialResult is the outcome of one official's job
type OfficialResult struct {
	OfficialID string
	Value      interface{}
	Error      error
}

// GetError returns the job error
func (r *OfficialResult) GetError() error {
	return r.Error
}

// BatchProcessor fans per-official work out over a bounded pool. No state is
// shared between officials, so each job runs independently.
type BatchProcessor struct {
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(concurrency int) *BatchProcessor {
	return &BatchProcessor{
		concurrency: concurrency,
	}
}

// ProcessOfficials runs fn for every official and returns the results in input
// order. Officials whose job never started because ctx was cancelled are
// returned in the second slice.
func (b *BatchProcessor) ProcessOfficials(ctx context.Context, officialIDs []string, fn OfficialFunc) ([]*OfficialResult, []string) {
	if len(officialIDs) == 0 {
		return []*OfficialResult{}, nil
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, id := range officialIDs {
		if !pool.Submit(&OfficialJob{OfficialID: id, Fn: fn}) {
			break
		}
	}

	byID := make(map[string]*OfficialResult, len(officialIDs))
	for _, r := range pool.Wait() {
		res := r.(*OfficialResult)
		byID[res.OfficialID] = res
	}

	results := make([]*OfficialResult, 0, len(byID))
	var skipped []string
	for _, id := range officialIDs {
		if res, ok := byID[id]; ok {
			results = append(results, res)
			continue
		}
		skipped = append(skipped, id)
	}

	return results, skipped
}

// ReadLines reads non-empty, non-comment lines from a file, deduplicated in
// order. Used for official id lists and source URL lists.
func ReadLines(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			lines = append(lines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return lines, nil
}
