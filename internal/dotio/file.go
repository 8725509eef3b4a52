package dotio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/Frankenween/dot-linker/internal/graph"
)

// zstExt marks transparently compressed graph files.
const zstExt = ".zst"

// ReadFile parses the DOT graph stored at path. Files ending in .zst are
// decompressed on the fly.
func ReadFile(path string) (*graph.Graph[string], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, zstExt) {
		dec, err := zstd.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("creating zstd decoder for %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}
	g, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return g, nil
}

// WriteFile writes g to path in DOT format, compressing with zstd when
// the path ends in .zst.
func WriteFile(path string, g *graph.Graph[string], name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	var werr error
	if strings.HasSuffix(path, zstExt) {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			f.Close()
			return fmt.Errorf("creating zstd encoder for %s: %w", path, err)
		}
		werr = Write(enc, g, name)
		if err := enc.Close(); err != nil && werr == nil {
			werr = err
		}
	} else {
		bw := bufio.NewWriter(f)
		werr = Write(bw, g, name)
		if err := bw.Flush(); err != nil && werr == nil {
			werr = err
		}
	}
	if err := f.Close(); err != nil && werr == nil {
		werr = err
	}
	if werr != nil {
		return fmt.Errorf("writing %s: %w", path, werr)
	}
	return nil
}
