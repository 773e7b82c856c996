// Package vectorindex holds one exact-search index per publication date,
// persisted as a single binary file of article ids and their vectors.
package vectorindex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const (
	fileMagic   = "NDIX"
	fileVersion = uint16(1)

	// maxDims caps the vector width a file header may declare, so a corrupt
	// header cannot drive the allocations in Load.
	maxDims = 1 << 20
)

// Match is one search hit. Distance is squared Euclidean distance, so lower
// means closer.
type Match struct {
	ArticleID int64
	Distance  float32
}

// Index is a flat in-memory vector index over article embeddings.
type Index struct {
	dims int
	ids  []int64
	vecs [][]float32
}

func New(dims int) (*Index, error) {
	if dims <= 0 {
		return nil, fmt.Errorf("vectorindex: dims must be positive, got %d", dims)
	}
	return &Index{dims: dims}, nil
}

func (x *Index) Len() int  { return len(x.ids) }
func (x *Index) Dims() int { return x.dims }

// Add appends a vector. Mixed dimensions are refused to keep one index
// consistent with one embedding model.
func (x *Index) Add(id int64, vec []float32) error {
	if len(vec) != x.dims {
		return fmt.Errorf("vectorindex: vector has %d dims, index has %d", len(vec), x.dims)
	}
	x.ids = append(x.ids, id)
	x.vecs = append(x.vecs, vec)
	return nil
}

// Search scans the whole index and returns the k nearest vectors by squared
// Euclidean distance, closest first. Fewer than k entries returns them all;
// an empty index returns nil.
func (x *Index) Search(query []float32, k int) ([]Match, error) {
	if len(query) != x.dims {
		return nil, fmt.Errorf("vectorindex: query has %d dims, index has %d", len(query), x.dims)
	}
	if k <= 0 || len(x.ids) == 0 {
		return nil, nil
	}
	matches := make([]Match, len(x.ids))
	for i, vec := range x.vecs {
		var d float32
		for j, q := range query {
			diff := vec[j] - q
			d += diff * diff
		}
		matches[i] = Match{ArticleID: x.ids[i], Distance: d}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ArticleID < matches[j].ArticleID
	})
	if k > len(matches) {
		k = len(matches)
	}
	return matches[:k], nil
}

// PathFor names the index file for a date under dir.
func PathFor(dir, date string) string {
	return filepath.Join(dir, fmt.Sprintf("articles_%s.idx", date))
}

// Save writes the index to path, creating parent directories as needed.
func (x *Index) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(fileMagic)
	binary.Write(&buf, binary.LittleEndian, fileVersion)
	binary.Write(&buf, binary.LittleEndian, uint32(x.dims))
	binary.Write(&buf, binary.LittleEndian, uint32(len(x.ids)))
	binary.Write(&buf, binary.LittleEndian, x.ids)
	for _, vec := range x.vecs {
		buf.Write(EncodeVector(vec))
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// Load reads an index file written by Save.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)
	magic := make([]byte, 4)
	if _, err := r.Read(magic); err != nil || string(magic) != fileMagic {
		return nil, fmt.Errorf("vectorindex: %s is not an index file", path)
	}
	var version uint16
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return nil, err
	}
	if version != fileVersion {
		return nil, fmt.Errorf("vectorindex: %s has version %d, want %d", path, version, fileVersion)
	}
	var dims, count uint32
	if err := binary.Read(r, binary.LittleEndian, &dims); err != nil {
		return nil, err
	}
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, err
	}
	if dims == 0 || dims > maxDims {
		return nil, fmt.Errorf("vectorindex: %s declares %d dims, limit is %d", path, dims, maxDims)
	}
	rowBytes := 8 + int64(dims)*4
	if int64(count) > int64(r.Len())/rowBytes {
		return nil, fmt.Errorf("vectorindex: %s declares %d entries, payload holds at most %d", path, count, int64(r.Len())/rowBytes)
	}
	want := int64(count) * rowBytes
	if int64(r.Len()) != want {
		return nil, fmt.Errorf("vectorindex: %s is truncated: %d payload bytes, want %d", path, r.Len(), want)
	}
	x, err := New(int(dims))
	if err != nil {
		return nil, err
	}
	x.ids = make([]int64, count)
	if err := binary.Read(r, binary.LittleEndian, x.ids); err != nil {
		return nil, err
	}
	x.vecs = make([][]float32, count)
	blob := make([]byte, int(dims)*4)
	for i := range x.vecs {
		if _, err := r.Read(blob); err != nil {
			return nil, err
		}
		vec, err := DecodeVector(blob)
		if err != nil {
			return nil, err
		}
		x.vecs[i] = vec
	}
	return x, nil
}
