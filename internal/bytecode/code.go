// Package bytecode holds the runtime's compiled-function representation:
// Code is the Frame-ready artifact the IR assembler produces and the
// interpreter consumes (spec §3.6).
package bytecode

import (
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Code is a compiled function's instruction stream plus everything a
// Frame needs to execute it: constant pools, stack requirements, and a
// packed line-mapping table for error reporting.
type Code struct {
	Hdr object.Header
	gch gc.GCHead

	Name string

	// Instr is the variable-length instruction stream: each instruction
	// is 1, 2 or 4 bytes with the opcode in the low byte (spec §4.10).
	Instr []byte

	Statics  []object.Object // statics pool (constants)
	Globals  []string        // global name pool
	Locals   []string        // local name pool
	Enclosed []string        // closure-captured name pool

	StackSize  int // operand stack slots required
	SyncSize   int // sync-key stack slots required (spec §3.8 "sync blocks")
	LocalsSize int

	// Lines is the packed (opcode-offset-delta, line-offset-delta) byte
	// pair stream described in spec §3.6: deltas in [-128, 127] pack into
	// a single entry, larger deltas chain additional zero-offset-delta
	// entries.
	Lines []byte

	docstring string
}

func (c *Code) Header() *object.Header { return &c.Hdr }
func (c *Code) GCHead() *gc.GCHead     { return &c.gch }

// NewCode builds a Code object from an already-assembled instruction
// stream and constant pools (produced by internal/ir's assembler).
func NewCode(name string, instr []byte, statics []object.Object, globals, locals, enclosed []string, stackSize, syncSize int, lines []byte) *Code {
	c := &Code{
		Name:       name,
		Instr:      instr,
		Statics:    statics,
		Globals:    globals,
		Locals:     locals,
		Enclosed:   enclosed,
		StackSize:  stackSize,
		SyncSize:   syncSize,
		LocalsSize: len(locals),
		Lines:      lines,
	}
	c.Hdr.Init(CodeType, false)
	return c
}

// LineAt decodes the packed delta stream to find the source line for
// instruction offset ip, walking entries until the accumulated opcode
// offset passes ip (spec §3.6).
func (c *Code) LineAt(ip int) int {
	offset := 0
	line := 0
	for i := 0; i+1 < len(c.Lines); i += 2 {
		opDelta := int(int8(c.Lines[i]))
		lineDelta := int(int8(c.Lines[i+1]))
		if offset+opDelta > ip {
			break
		}
		offset += opDelta
		line += lineDelta
	}
	return line
}

var CodeType = &object.TypeInfo{
	Name:  "Code",
	Flags: object.FlagStruct | object.FlagGC,
	Repr:  func(o object.Object) string { return "<code " + o.(*Code).Name + ">" },
	Trace: func(self object.Object, visit func(object.Object)) {
		for _, s := range self.(*Code).Statics {
			visit(s)
		}
	},
}
