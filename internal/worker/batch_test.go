package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestBatchProcessor_ProcessOfficials(t *testing.T) {
	processor := NewBatchProcessor(2)

	ids := []string{"o1", "o2", "o3"}
	results, skipped := processor.ProcessOfficials(context.Background(), ids, func(ctx context.Context, id string) (interface{}, error) {
		time.Sleep(5 * time.Millisecond)
		return "done:" + id, nil
	})

	if len(skipped) != 0 {
		t.Errorf("expected no skipped officials, got %v", skipped)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.OfficialID != ids[i] {
			t.Errorf("expected results in input order, got %s at %d", res.OfficialID, i)
		}
		if res.Value != "done:"+ids[i] {
			t.Errorf("unexpected value %v", res.Value)
		}
	}
}

func TestBatchProcessor_ErrorIsolated(t *testing.T) {
	processor := NewBatchProcessor(2)

	results, _ := processor.ProcessOfficials(context.Background(), []string{"ok", "bad", "ok2"}, func(ctx context.Context, id string) (interface{}, error) {
		if id == "bad" {
			return nil, errors.New("store unavailable")
		}
		return nil, nil
	})

	failed := 0
	for _, res := range results {
		if res.GetError() != nil {
			failed++
			if res.OfficialID != "bad" {
				t.Errorf("unexpected failure for %s", res.OfficialID)
			}
		}
	}
	if len(results) != 3 || failed != 1 {
		t.Errorf("expected 3 results with 1 failure, got %d results, %d failures", len(results), failed)
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	processor := NewBatchProcessor(1)
	ctx, cancel := context.WithCancel(context.Background())

	var ran int32
	ids := make([]string, 20)
	for i := range ids {
		ids[i] = string(rune('a' + i))
	}

	results, skipped := processor.ProcessOfficials(ctx, ids, func(ctx context.Context, id string) (interface{}, error) {
		if atomic.AddInt32(&ran, 1) == 1 {
			cancel()
		}
		return nil, nil
	})

	if len(results)+len(skipped) != len(ids) {
		t.Errorf("expected every official accounted for, got %d results and %d skipped", len(results), len(skipped))
	}
	if len(skipped) == 0 {
		t.Error("expected some officials to be skipped after cancellation")
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(2)
	results, skipped := processor.ProcessOfficials(context.Background(), nil, nil)
	if len(results) != 0 || len(skipped) != 0 {
		t.Errorf("expected empty results, got %d, %d", len(results), len(skipped))
	}
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "officials.txt")
	content := "# deputies\no1\n\no2\no1\n  o3  \n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines failed: %v", err)
	}
	if want := []string{"o1", "o2", "o3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestReadLines_NonExistent(t *testing.T) {
	if _, err := ReadLines(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
