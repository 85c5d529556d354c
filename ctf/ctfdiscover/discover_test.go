package ctfdiscover_test

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/barometric/ctf-fs/ctf/ctfdiscover"
)

func mkTrace(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "metadata"), []byte("/* CTF 1.8 */"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestDiscover_basic(t *testing.T) {
	root := t.TempDir()
	mkTrace(t, filepath.Join(root, "host-a", "trace-1"))
	mkTrace(t, filepath.Join(root, "host-b", "trace-2"))

	if err := os.MkdirAll(filepath.Join(root, "clutter", "not-a-trace"), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "clutter", "README"), []byte("hi"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	traces, err := ctfdiscover.Discover(context.Background(), nil, root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if want, have := 2, len(traces); want != have {
		t.Fatalf("trace count: want %d, have %d", want, have)
	}

	names := make([]string, len(traces))
	for i, tr := range traces {
		names[i] = tr.DisplayName
	}
	sort.Strings(names)

	wantNames := []string{"host-a/trace-1", "host-b/trace-2"}
	for i := range wantNames {
		if want, have := wantNames[i], names[i]; want != have {
			t.Errorf("name %d: want %q, have %q", i, want, have)
		}
	}

	for _, name := range names {
		if name == "" {
			t.Errorf("display name is empty")
		}
		if name[0] == '/' {
			t.Errorf("display name %q starts with /", name)
		}
	}
}

func TestDiscover_nestedTraceNotDescended(t *testing.T) {
	root := t.TempDir()
	outer := filepath.Join(root, "outer")
	mkTrace(t, outer)
	mkTrace(t, filepath.Join(outer, "inner"))

	traces, err := ctfdiscover.Discover(context.Background(), nil, root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if want, have := 1, len(traces); want != have {
		t.Fatalf("trace count: want %d, have %d", want, have)
	}

	if want, have := outer, traces[0].AbsPath; want != have {
		t.Errorf("abs path: want %q, have %q", want, have)
	}
}

func TestDiscover_empty(t *testing.T) {
	root := t.TempDir()

	if _, err := ctfdiscover.Discover(context.Background(), nil, root); err == nil {
		t.Fatal("expected error for empty discovery result, got nil")
	}
}

func TestDiscover_singleTraceDisplayNameIsBase(t *testing.T) {
	root := t.TempDir()
	mkTrace(t, filepath.Join(root, "only-trace"))

	traces, err := ctfdiscover.Discover(context.Background(), nil, root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	if want, have := 1, len(traces); want != have {
		t.Fatalf("trace count: want %d, have %d", want, have)
	}

	if want, have := "only-trace", traces[0].DisplayName; want != have {
		t.Errorf("display name: want %q, have %q", want, have)
	}
}
