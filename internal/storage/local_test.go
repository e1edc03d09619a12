package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpen(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	ctx := context.Background()

	logical, err := s.Save(ctx, "invoice", "folder-1", "offre.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if logical != "files/invoice/folder-1/offre.pdf" {
		t.Fatalf("logical path = %q", logical)
	}

	r, err := s.Open(ctx, logical)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer r.Close()
	data, _ := io.ReadAll(r)
	if string(data) != "content" {
		t.Fatalf("content = %q", data)
	}
}

func TestStoreFromPath_MissingSourceIsSkipped(t *testing.T) {
	s := NewLocalStorage(t.TempDir())

	logical, err := s.StoreFromPath(context.Background(),
		filepath.Join(t.TempDir(), "nope.pdf"), "invoice", "folder-1")
	if err != nil {
		t.Fatalf("missing source must not error: %v", err)
	}
	if logical != "" {
		t.Fatalf("logical path = %q, want empty", logical)
	}
}

func TestStoreFromPath_CopiesFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "rapport.pdf")
	if err := os.WriteFile(src, []byte("%PDF"), 0644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	s := NewLocalStorage(t.TempDir())
	logical, err := s.StoreFromPath(context.Background(), src, "invoice", "abc")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if logical != "files/invoice/abc/rapport.pdf" {
		t.Fatalf("logical path = %q", logical)
	}
}

func TestSanitizeFileName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`C:\Mandats\7011\offre.pdf`, "offre.pdf"},
		{"rapport final.pdf", "rapport final.pdf"},
		{`a:b*c?.pdf`, "a_b_c_.pdf"},
	}
	for _, c := range cases {
		if got := SanitizeFileName(c.in); got != c.want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
	if got := SanitizeFileName("   "); !strings.HasPrefix(got, "document-") {
		t.Errorf("blank filename = %q, want generated fallback", got)
	}
}
