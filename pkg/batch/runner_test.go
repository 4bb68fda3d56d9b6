package batch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunProcessesEveryName(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e"}
	var mu sync.Mutex
	seen := make(map[string]bool)

	results := Run(context.Background(), names, 3, func(ctx context.Context, name string) error {
		mu.Lock()
		seen[name] = true
		mu.Unlock()
		return nil
	})

	if len(results) != len(names) {
		t.Fatalf("expected %d results, got %d", len(names), len(results))
	}
	for i, r := range results {
		if r.Name != names[i] {
			t.Errorf("result %d is %q, want %q", i, r.Name, names[i])
		}
		if r.Err != nil {
			t.Errorf("%s failed: %v", r.Name, r.Err)
		}
	}
	if len(seen) != len(names) {
		t.Errorf("only %d of %d names processed", len(seen), len(names))
	}
}

func TestRunCollectsFailuresWithoutAborting(t *testing.T) {
	names := []string{"good", "bad", "alsogood"}
	boom := errors.New("boom")

	results := Run(context.Background(), names, 2, func(ctx context.Context, name string) error {
		if name == "bad" {
			return boom
		}
		return nil
	})

	if Failed(results) != 1 {
		t.Fatalf("expected exactly 1 failure, got %d", Failed(results))
	}
	for _, r := range results {
		if r.Name == "bad" && !errors.Is(r.Err, boom) {
			t.Errorf("failure not attributed: %+v", r)
		}
		if r.Name != "bad" && r.Err != nil {
			t.Errorf("%s should have succeeded: %v", r.Name, r.Err)
		}
	}
}

func TestRunLimitsConcurrency(t *testing.T) {
	names := make([]string, 20)
	for i := range names {
		names[i] = fmt.Sprintf("file%02d", i)
	}

	var inFlight, peak int32
	results := Run(context.Background(), names, 3, func(ctx context.Context, name string) error {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if cur <= p || atomic.CompareAndSwapInt32(&peak, p, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	})

	if Failed(results) != 0 {
		t.Fatalf("unexpected failures: %v", results)
	}
	if got := atomic.LoadInt32(&peak); got > 3 {
		t.Errorf("%d files in flight at once, want at most 3", got)
	}
}

func TestRunMoreWorkersThanFiles(t *testing.T) {
	results := Run(context.Background(), []string{"only"}, 16, func(ctx context.Context, name string) error {
		return nil
	})
	if len(results) != 1 || results[0].Err != nil {
		t.Fatalf("unexpected results: %v", results)
	}
}

func TestRunNoFiles(t *testing.T) {
	if results := Run(context.Background(), nil, 4, nil); len(results) != 0 {
		t.Fatalf("expected no results, got %v", results)
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	results := Run(ctx, []string{"a", "b"}, 2, func(ctx context.Context, name string) error {
		ran = true
		return nil
	})

	if ran {
		t.Errorf("job ran on a canceled context")
	}
	for _, r := range results {
		if r.Err == nil {
			t.Errorf("%s reported success after cancellation", r.Name)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := WriteFileAtomic(path, []byte("first")); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second")); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "second" {
		t.Errorf("got %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomicBadDir(t *testing.T) {
	err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "out.json"), []byte("x"))
	if err == nil {
		t.Fatal("write into a missing directory succeeded")
	}
	if !strings.Contains(fmt.Sprint(err), "missing") {
		t.Errorf("error does not name the path: %v", err)
	}
}
