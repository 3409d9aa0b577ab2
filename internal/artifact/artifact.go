// Package artifact stores a compiled effect: the SPIR-V module together
// with the reflection a runtime needs to bind it.
package artifact

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// SchemaVersion is bumped whenever the Bundle layout changes.
const SchemaVersion uint16 = 1

// ErrSchema is returned for bundles written by an incompatible version.
var ErrSchema = errors.New("artifact schema mismatch")

// ErrCorrupt is returned when the module digest does not match.
var ErrCorrupt = errors.New("artifact module digest mismatch")

// Digest is the SHA-256 of the module bytes.
type Digest [32]byte

// Bundle is the bytecode container written by `sdslc compile --format=bundle`.
type Bundle struct {
	Schema  uint16
	Name    string
	Profile string
	// SPIRVVersion is the header version word, e.g. 0x00010000.
	SPIRVVersion uint32
	Module       []byte
	Digest       Digest

	Entries   []Entry
	CBuffers  []CBuffer
	Resources []Resource
}

// Entry describes one stage entry point and its interface.
type Entry struct {
	Name      string
	Stage     string
	Inputs    []Param
	Outputs   []Param
	LocalSize [3]uint32 `msgpack:",omitempty"`
}

// Param is one stream crossing a stage boundary.
type Param struct {
	Name     string
	Semantic string
	Type     string
	// Builtin is set for system values; Location is meaningful otherwise.
	Builtin  string `msgpack:",omitempty"`
	Location uint32
}

// CBuffer is a uniform block with its std140 layout.
type CBuffer struct {
	Name    string
	Binding uint32
	Size    uint32
	Members []Member
}

// Member is one uniform and its placement.
type Member struct {
	Name   string
	Type   string
	Offset uint32
	Size   uint32
	// MatrixStride and ArrayStride are zero when they do not apply.
	MatrixStride uint32 `msgpack:",omitempty"`
	ArrayStride  uint32 `msgpack:",omitempty"`
	RowMajor     bool   `msgpack:",omitempty"`
}

// Resource is a texture, sampler or buffer binding.
type Resource struct {
	Name    string
	Type    string
	Binding uint32
	Set     uint32
}

// Seal fills the schema and digest fields from the module bytes.
func (b *Bundle) Seal() {
	b.Schema = SchemaVersion
	b.Digest = sha256.Sum256(b.Module)
}

// Entry returns the entry point with the given name.
func (b *Bundle) Entry(name string) (*Entry, bool) {
	for i := range b.Entries {
		if b.Entries[i].Name == name {
			return &b.Entries[i], true
		}
	}
	return nil, false
}

// Encode writes b as msgpack.
func Encode(w io.Writer, b *Bundle) error {
	if b.Schema == 0 {
		b.Seal()
	}
	if err := msgpack.NewEncoder(w).Encode(b); err != nil {
		return fmt.Errorf("encode artifact %s: %w", b.Name, err)
	}
	return nil
}

// Decode reads a bundle and checks its schema and digest.
func Decode(r io.Reader) (*Bundle, error) {
	var b Bundle
	if err := msgpack.NewDecoder(r).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	if b.Schema != SchemaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrSchema, b.Schema, SchemaVersion)
	}
	if sha256.Sum256(b.Module) != b.Digest {
		return nil, fmt.Errorf("%s: %w", b.Name, ErrCorrupt)
	}
	return &b, nil
}

// WriteFile stores b at path through a temporary file and a rename.
func WriteFile(path string, b *Bundle) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".sdslb-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, b); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), path)
}

// ReadFile loads a bundle written by WriteFile.
func ReadFile(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
