package spirv

import (
	"encoding/binary"
	"fmt"
	"sort"

	"fortio.org/safecast"
)

// Instruction is one encoded instruction without its leading word.
type Instruction struct {
	Op    Op
	Words []uint32
}

// Section is a logical layout section of a module.
type Section uint8

const (
	SectionExtInstImport Section = iota
	SectionEntryPoint
	SectionExecutionMode
	SectionDebug
	SectionAnnotation
	// SectionTypes holds types, constants and global variables in
	// definition order.
	SectionTypes
	SectionFunctions
	sectionCount
)

// ModuleBuilder accumulates instructions per section and writes the
// binary. Capabilities and the memory model are emitted by Build.
type ModuleBuilder struct {
	version   uint32
	generator uint32
	nextID    uint32
	sections  [sectionCount][]Instruction
	caps      map[Capability]bool
	memo      map[string]uint32
}

// NewModuleBuilder starts an empty module for a header version word such
// as 0x00010000.
func NewModuleBuilder(version uint32) *ModuleBuilder {
	return &ModuleBuilder{
		version:   version,
		generator: GeneratorID,
		nextID:    1,
		caps:      map[Capability]bool{CapabilityShader: true},
		memo:      make(map[string]uint32),
	}
}

// AllocID reserves the next result id.
func (b *ModuleBuilder) AllocID() uint32 {
	id := b.nextID
	b.nextID++
	return id
}

// Bound is one past the largest id allocated so far.
func (b *ModuleBuilder) Bound() uint32 { return b.nextID }

// Require declares a capability; duplicates are folded.
func (b *ModuleBuilder) Require(c Capability) { b.caps[c] = true }

// Capabilities returns the declared capabilities in numeric order.
func (b *ModuleBuilder) Capabilities() []Capability {
	out := make([]Capability, 0, len(b.caps))
	for c := range b.caps {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Add appends an instruction to a section.
func (b *ModuleBuilder) Add(sec Section, op Op, words ...uint32) {
	b.sections[sec] = append(b.sections[sec], Instruction{Op: op, Words: words})
}

// Define appends a result-producing instruction to a section and returns
// its id; resultType is skipped when zero.
func (b *ModuleBuilder) Define(sec Section, op Op, resultType uint32, operands ...uint32) uint32 {
	id := b.AllocID()
	words := make([]uint32, 0, len(operands)+2)
	if resultType != 0 {
		words = append(words, resultType)
	}
	words = append(words, id)
	words = append(words, operands...)
	b.Add(sec, op, words...)
	return id
}

// Memo returns the id cached under key, calling build on the first use.
// Types and constants are deduplicated through it.
func (b *ModuleBuilder) Memo(key string, build func() uint32) uint32 {
	if id, ok := b.memo[key]; ok {
		return id
	}
	id := build()
	b.memo[key] = id
	return id
}

// Name attaches a debug name.
func (b *ModuleBuilder) Name(id uint32, name string) {
	b.Add(SectionDebug, OpName, append([]uint32{id}, String(name)...)...)
}

func (b *ModuleBuilder) MemberName(structID, member uint32, name string) {
	b.Add(SectionDebug, OpMemberName, append([]uint32{structID, member}, String(name)...)...)
}

func (b *ModuleBuilder) Decorate(id uint32, d Decoration, params ...uint32) {
	b.Add(SectionAnnotation, OpDecorate, append([]uint32{id, uint32(d)}, params...)...)
}

func (b *ModuleBuilder) MemberDecorate(structID, member uint32, d Decoration, params ...uint32) {
	b.Add(SectionAnnotation, OpMemberDecorate, append([]uint32{structID, member, uint32(d)}, params...)...)
}

// ExtInstImport imports an extended instruction set once.
func (b *ModuleBuilder) ExtInstImport(name string) uint32 {
	return b.Memo("import "+name, func() uint32 {
		return b.Define(SectionExtInstImport, OpExtInstImport, 0, String(name)...)
	})
}

func (b *ModuleBuilder) EntryPoint(model ExecutionModel, fn uint32, name string, interfaces []uint32) {
	words := append([]uint32{uint32(model), fn}, String(name)...)
	b.Add(SectionEntryPoint, OpEntryPoint, append(words, interfaces...)...)
}

func (b *ModuleBuilder) ExecutionMode(fn uint32, mode ExecutionMode, params ...uint32) {
	b.Add(SectionExecutionMode, OpExecutionMode, append([]uint32{fn, uint32(mode)}, params...)...)
}

// String encodes a literal string: UTF-8, nul terminated, padded to a
// word boundary.
func String(s string) []uint32 {
	buf := make([]byte, len(s)+1, len(s)+4)
	copy(buf, s)
	for len(buf)%4 != 0 {
		buf = append(buf, 0)
	}
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(buf[i*4:])
	}
	return words
}

// Build writes the header and all sections in the logical layout order.
func (b *ModuleBuilder) Build() ([]byte, error) {
	if b.nextID > MaxBound+1 {
		return nil, fmt.Errorf("module needs %d ids, limit is %d", b.nextID-1, MaxBound)
	}
	var out []Instruction
	for _, c := range b.Capabilities() {
		out = append(out, Instruction{Op: OpCapability, Words: []uint32{uint32(c)}})
	}
	out = append(out, b.sections[SectionExtInstImport]...)
	out = append(out, Instruction{Op: OpMemoryModel, Words: []uint32{addressingLogical, memoryGLSL450}})
	for sec := SectionEntryPoint; sec < sectionCount; sec++ {
		out = append(out, b.sections[sec]...)
	}

	words := []uint32{MagicNumber, b.version, b.generator, b.nextID, 0}
	for _, inst := range out {
		count, err := safecast.Conv[uint16](len(inst.Words) + 1)
		if err != nil {
			return nil, fmt.Errorf("%s: instruction too long (%d words)", inst.Op, len(inst.Words)+1)
		}
		words = append(words, uint32(count)<<16|uint32(inst.Op))
		words = append(words, inst.Words...)
	}
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return buf, nil
}

// Header is the first five words of a module.
type Header struct {
	Magic     uint32
	Version   uint32
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// VersionString renders the version word as major.minor.
func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d", h.Version>>16&0xff, h.Version>>8&0xff)
}

// Decode splits a little-endian module into its header and instructions.
func Decode(module []byte) (Header, []Instruction, error) {
	var h Header
	if len(module)%4 != 0 || len(module) < 20 {
		return h, nil, fmt.Errorf("module size %d is not a whole number of words", len(module))
	}
	words := make([]uint32, len(module)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(module[i*4:])
	}
	h = Header{Magic: words[0], Version: words[1], Generator: words[2], Bound: words[3], Schema: words[4]}
	if h.Magic != MagicNumber {
		return h, nil, fmt.Errorf("bad magic number %#08x", h.Magic)
	}
	var insts []Instruction
	for i := 5; i < len(words); {
		count := int(words[i] >> 16)
		if count == 0 || i+count > len(words) {
			return h, insts, fmt.Errorf("truncated instruction at word %d", i)
		}
		insts = append(insts, Instruction{Op: Op(words[i] & 0xffff), Words: words[i+1 : i+count]})
		i += count
	}
	return h, insts, nil
}
