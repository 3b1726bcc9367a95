package marker

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteAndReadProcessMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "status", "process_complete.json")

	in := ProcessMarker{
		Timestamp:        time.Now().UTC().Truncate(time.Second),
		InputsDetected:   3,
		ProcessedSuccess: 2,
		ProcessedFailed:  1,
		Outputs:          []string{"page_001.json", "page_002.json"},
	}
	if err := Write(path, in); err != nil {
		t.Fatalf("write marker: %v", err)
	}

	out, err := ReadProcess(path)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if out.InputsDetected != 3 || out.ProcessedSuccess != 2 || out.ProcessedFailed != 1 {
		t.Fatalf("unexpected marker counts: %+v", out)
	}
	if len(out.Outputs) != 2 || out.Outputs[0] != "page_001.json" {
		t.Fatalf("unexpected outputs: %v", out.Outputs)
	}
}

func TestWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fetch_complete.json")
	if err := Write(path, FetchMarker{Timestamp: time.Now().UTC()}); err != nil {
		t.Fatalf("write marker: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away")
	}
}

func TestWaitReturnsOnceMarkerExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marker.json")

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = os.WriteFile(path, []byte("{}"), 0o644)
	}()

	if err := Wait(context.Background(), path, 5*time.Millisecond); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitReturnsImmediatelyForExistingMarker(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "marker.json")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// A long interval must not matter when the marker is already there.
	if err := Wait(context.Background(), path, time.Hour); err != nil {
		t.Fatalf("wait: %v", err)
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "never.json")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Wait(ctx, path, 5*time.Millisecond)
	if err == nil {
		t.Fatalf("expected error for cancelled wait")
	}
	if err != context.DeadlineExceeded {
		t.Fatalf("expected deadline error, got %v", err)
	}
}
