package bytecode

// OpCode is one instruction's operation byte (spec §4.10 "key opcodes").
type OpCode byte

const (
	OpNOP OpCode = iota

	// Constants and names.
	OpLSTATIC // load statics[arg]
	OpLDGBL   // load globals[arg]
	OpLDLC    // load locals[arg]
	OpLDENC   // load enclosed[arg]
	OpLDSCOPE // load enclosing-scope name arg

	// Attributes.
	OpLDATTR
	OpLDMETH
	OpSTATTR

	// Arithmetic/logic.
	OpADD
	OpSUB
	OpMUL
	OpDIV
	OpIDIV
	OpMOD
	OpSHL
	OpSHR
	OpLAND
	OpLOR
	OpLXOR

	// Control flow.
	OpJMP  // unconditional jump
	OpJF   // jump if false
	OpJT   // jump if true
	OpJEX  // trap-handler marker, no target: pops the caught exception
	OpJFOP // jump-if-false, pop a value first
	OpJTOP // jump-if-true, pop a value first
	OpJNIL // jump if top-of-stack is nil
	OpJNN  // jump if top-of-stack is not nil

	// Calling.
	OpCALL // arg: low 16 bits positional count, next 8 bits OpCodeCallMode
	OpSPW  // spawn a fiber from the callable on the stack
	OpINIT // run a struct/trait initializer chain
	OpDFR  // register a deferred block
	OpRET

	// Containers.
	OpMKDT // build a Dict from arg pairs on the stack
	OpMKLT // build a List from arg values on the stack
	OpMKST // build a Set from arg values on the stack
	OpMKTP // build a Tuple from arg values on the stack
	OpPOPGT

	// Iteration/misc.
	OpDUP
	OpPOP
	OpIMPFRM // import a name from a module
	OpIMPMOD // import a whole module

	opCodeCount
)

// OpCodeCallMode flags pack into CALL's high argument byte (spec §6.1).
type OpCodeCallMode byte

const (
	CallModeKwParams OpCodeCallMode = 1 << iota
	CallModeRestParams
)

// opWidth tabulates each opcode's fixed encoded width in bytes: 1 for
// an opcode with no argument, 2 for a single-byte argument, 4 for a
// 24-bit argument (spec §6.1 "table-driven by OpCodeOffset[opcode]").
// Width is a static property of the opcode, never of the argument's
// runtime value, so two instructions with the same opcode always
// occupy the same number of bytes.
var opWidth = [opCodeCount]byte{
	OpNOP: 1,

	OpLSTATIC: 4,
	OpLDGBL:   4,
	OpLDLC:    4,
	OpLDENC:   4,
	OpLDSCOPE: 4,

	OpLDATTR: 4,
	OpLDMETH: 4,
	OpSTATTR: 4,

	OpADD:  1,
	OpSUB:  1,
	OpMUL:  1,
	OpDIV:  1,
	OpIDIV: 1,
	OpMOD:  1,
	OpSHL:  1,
	OpSHR:  1,
	OpLAND: 1,
	OpLOR:  1,
	OpLXOR: 1,

	OpJMP:  4,
	OpJF:   4,
	OpJT:   4,
	OpJEX:  1,
	OpJFOP: 4,
	OpJTOP: 4,
	OpJNIL: 4,
	OpJNN:  4,

	OpCALL: 4,
	OpSPW:  1,
	OpINIT: 1,
	OpDFR:  4,
	OpRET:  1,

	OpMKDT:  4,
	OpMKLT:  4,
	OpMKST:  4,
	OpMKTP:  4,
	OpPOPGT: 1,

	OpDUP:    1,
	OpPOP:    1,
	OpIMPFRM: 4,
	OpIMPMOD: 4,
}

// Width reports op's fixed encoded instruction length in bytes.
func (op OpCode) Width() int {
	if int(op) >= len(opWidth) {
		return 1
	}
	return int(opWidth[op])
}

// StackChange tabulates each opcode's net effect on the operand stack
// depth, used by the compiler to track stack.current/stack.required
// while emitting (spec §4.10). Opcodes whose effect depends on their
// argument (CALL, MKDT/MKLT/MKST/MKTP) are handled specially by the
// caller rather than through this table; they read 0 here.
var stackChange = [opCodeCount]int{
	OpLSTATIC: 1,
	OpLDGBL:   1,
	OpLDLC:    1,
	OpLDENC:   1,
	OpLDSCOPE: 1,

	OpLDATTR: 0, // pops receiver, pushes attribute
	OpLDMETH: 1, // pushes bound method alongside receiver
	OpSTATTR: -2,

	OpADD: -1, OpSUB: -1, OpMUL: -1, OpDIV: -1, OpIDIV: -1, OpMOD: -1,
	OpSHL: -1, OpSHR: -1, OpLAND: -1, OpLOR: -1, OpLXOR: -1,

	OpJMP: 0, OpJF: -1, OpJT: -1, OpJEX: -1,
	OpJFOP: -1, OpJTOP: -1, OpJNIL: 0, OpJNN: 0,

	OpSPW: 0, OpINIT: 0, OpDFR: 0, OpRET: -1,

	OpPOPGT: -1,

	OpDUP: 1, OpPOP: -1,
	OpIMPFRM: 1, OpIMPMOD: 1,
}

// StackChange returns op's tabulated stack-depth delta.
func (op OpCode) StackChange() int {
	if int(op) >= len(stackChange) {
		return 0
	}
	return stackChange[op]
}
