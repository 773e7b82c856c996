package vectorindex

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestEncodeDecodeVector(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75, 0}
	blob := EncodeVector(in)
	if len(blob) != len(in)*4 {
		t.Fatalf("blob length: got %d, want %d", len(blob), len(in)*4)
	}
	out, err := DecodeVector(blob)
	if err != nil {
		t.Fatalf("DecodeVector error: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded length: got %d, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("element %d: got %v, want %v", i, out[i], in[i])
		}
	}
}

func TestDecodeVectorBadLength(t *testing.T) {
	if _, err := DecodeVector([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected error for blob of length 3")
	}
}

func TestSearchOrdersByDistance(t *testing.T) {
	x, err := New(2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	// id 1 at origin, id 2 at (3,4), id 3 at (1,0)
	if err := x.Add(1, []float32{0, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := x.Add(2, []float32{3, 4}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := x.Add(3, []float32{1, 0}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	got, err := x.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
	if got[0].ArticleID != 1 || got[0].Distance != 0 {
		t.Errorf("first match: %+v", got[0])
	}
	if got[1].ArticleID != 3 || got[1].Distance != 1 {
		t.Errorf("second match: %+v", got[1])
	}
}

func TestSearchTruncatesK(t *testing.T) {
	x, _ := New(2)
	x.Add(1, []float32{0, 0})
	got, err := x.Search([]float32{1, 1}, 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("got %d matches, want 1", len(got))
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	x, _ := New(3)
	got, err := x.Search([]float32{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil matches, got %v", got)
	}
}

func TestAddRejectsWrongDims(t *testing.T) {
	x, _ := New(3)
	if err := x.Add(1, []float32{1, 2}); err == nil {
		t.Fatalf("expected dims error")
	}
	if _, err := x.Search([]float32{1, 2}, 1); err == nil {
		t.Fatalf("expected query dims error")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	x, _ := New(3)
	x.Add(10, []float32{1, 2, 3})
	x.Add(20, []float32{-1, 0.5, 2.25})

	path := PathFor(t.TempDir(), "2025-06-20")
	if err := x.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Len() != 2 || loaded.Dims() != 3 {
		t.Fatalf("loaded index: len=%d dims=%d", loaded.Len(), loaded.Dims())
	}
	got, err := loaded.Search([]float32{1, 2, 3}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].ArticleID != 10 || got[0].Distance != 0 {
		t.Errorf("nearest after reload: %+v", got)
	}
}

func TestPathFor(t *testing.T) {
	got := PathFor("vector_store", "2025-06-20")
	want := filepath.Join("vector_store", "articles_2025-06-20.idx")
	if got != want {
		t.Errorf("PathFor: got %q, want %q", got, want)
	}
}

func TestLoadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.idx")
	if err := os.WriteFile(path, []byte("not an index"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error loading garbage file")
	}
}

func TestLoadRejectsCorruptHeader(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, dims, count uint32, payload int) string {
		t.Helper()
		var buf bytes.Buffer
		buf.WriteString(fileMagic)
		binary.Write(&buf, binary.LittleEndian, fileVersion)
		binary.Write(&buf, binary.LittleEndian, dims)
		binary.Write(&buf, binary.LittleEndian, count)
		buf.Write(make([]byte, payload))
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	cases := []struct {
		name    string
		dims    uint32
		count   uint32
		payload int
	}{
		{"wrapped.idx", 1<<31 - 2, 1 << 31, 0}, // size math on these wraps int64 to zero
		{"widedims.idx", 1 << 24, 1, 12},
		{"zerodims.idx", 0, 1, 8},
		{"overcount.idx", 2, 1000, 16},
	}
	for _, tc := range cases {
		if _, err := Load(write(tc.name, tc.dims, tc.count, tc.payload)); err == nil {
			t.Errorf("%s: expected error for dims=%d count=%d payload=%d", tc.name, tc.dims, tc.count, tc.payload)
		}
	}
}
