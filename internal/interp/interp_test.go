package interp

import (
	"testing"

	"github.com/zephyr-lang/zephyr/internal/bytecode"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// buildCode assembles a bytecode.Code from a sequence of (op, arg) pairs.
func buildCode(name string, statics []object.Object, globals []string, localsCount, stackSize int, ops ...[2]uint32) *bytecode.Code {
	var instr []byte
	for _, o := range ops {
		instr = bytecode.EncodeInstr(instr, bytecode.OpCode(o[0]), o[1])
	}
	locals := make([]string, localsCount)
	return bytecode.NewCode(name, instr, statics, globals, locals, nil, stackSize, 0, nil)
}

func op(o bytecode.OpCode, arg uint32) [2]uint32 { return [2]uint32{uint32(o), arg} }

func newTestFiber() *fiber.Fiber { return fiber.NewFiber(0) }

func intVal(v int64) *value.Int { return value.NewInt(v) }

func TestArithmeticAddDispatchesThroughBinaryOp(t *testing.T) {
	f := newTestFiber()
	statics := []object.Object{intVal(2), intVal(3)}
	code := buildCode("add", statics, nil, 0, 4,
		op(bytecode.OpLSTATIC, 0),
		op(bytecode.OpLSTATIC, 1),
		op(bytecode.OpADD, 0),
		op(bytecode.OpRET, 0),
	)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)

	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	got, ok := fr.ReturnValue.(*value.Int)
	if !ok {
		t.Fatalf("return value = %T, want *value.Int", fr.ReturnValue)
	}
	if got.Value != 5 {
		t.Fatalf("2 + 3 = %d, want 5", got.Value)
	}
}

// jumpCode lets jump-target tests patch a JMP/JF/JT/JFOP/JTOP argument
// after laying out the rest of the instruction stream, since the target
// offset depends on the width of every earlier instruction.
type jumpCode struct {
	instr []byte
}

func (jc *jumpCode) emit(o bytecode.OpCode, arg uint32) int {
	at := len(jc.instr)
	jc.instr = bytecode.EncodeInstr(jc.instr, o, arg)
	return at
}

func (jc *jumpCode) patchTarget(instrAt int, target int) {
	jc.instr[instrAt+1] = byte(target)
	jc.instr[instrAt+2] = byte(target >> 8)
	jc.instr[instrAt+3] = byte(target >> 16)
}

func TestJFSkipsTrueBranchWhenConditionFalse(t *testing.T) {
	f := newTestFiber()
	statics := []object.Object{intVal(0), intVal(1), intVal(2)}

	jc := &jumpCode{}
	jc.emit(bytecode.OpLSTATIC, 0)
	jfAt := jc.emit(bytecode.OpJF, 0)
	jc.emit(bytecode.OpLSTATIC, 1)
	jc.emit(bytecode.OpRET, 0)
	target := len(jc.instr)
	jc.emit(bytecode.OpLSTATIC, 2)
	jc.emit(bytecode.OpRET, 0)
	jc.patchTarget(jfAt, target)

	code := bytecode.NewCode("jf", jc.instr, statics, nil, nil, nil, 2, 0, nil)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)

	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	got, ok := fr.ReturnValue.(*value.Int)
	if !ok || got.Value != 2 {
		t.Fatalf("return value = %v, want Int(2)", fr.ReturnValue)
	}
}

func TestJNNTestsTopOfStackWithoutPopping(t *testing.T) {
	f := newTestFiber()
	statics := []object.Object{intVal(11)}

	jc := &jumpCode{}
	jc.emit(bytecode.OpLSTATIC, 0)
	jnnAt := jc.emit(bytecode.OpJNN, 0)
	jc.emit(bytecode.OpPOP, 0) // not reached: value is non-nil
	target := len(jc.instr)
	jc.emit(bytecode.OpRET, 0) // returns the peeked value, still on the stack
	jc.patchTarget(jnnAt, target)

	code := bytecode.NewCode("jnn", jc.instr, statics, nil, nil, nil, 2, 0, nil)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)

	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	got, ok := fr.ReturnValue.(*value.Int)
	if !ok || got.Value != 11 {
		t.Fatalf("return value = %v, want Int(11)", fr.ReturnValue)
	}
}

func TestCallRoundTripsThroughNativeFunction(t *testing.T) {
	f := newTestFiber()
	doubled := NewNativeFunction("double", 1, 1, 0, nil,
		func(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
			return value.NewInt(2 * args[0].(*value.Int).Value), nil
		})
	statics := []object.Object{doubled, intVal(21)}
	code := buildCode("call", statics, nil, 0, 4,
		op(bytecode.OpLSTATIC, 0), // callee
		op(bytecode.OpLSTATIC, 1), // arg
		op(bytecode.OpCALL, 1),    // argc=1, mode=0
		op(bytecode.OpRET, 0),
	)

	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	got, ok := fr.ReturnValue.(*value.Int)
	if !ok || got.Value != 42 {
		t.Fatalf("return value = %v, want Int(42)", fr.ReturnValue)
	}
}

func TestCallRoundTripsThroughCodeFunction(t *testing.T) {
	f := newTestFiber()
	inner := buildCode("inc", []object.Object{intVal(1)}, nil, 1, 3,
		op(bytecode.OpLDLC, 0),
		op(bytecode.OpLSTATIC, 0),
		op(bytecode.OpADD, 0),
		op(bytecode.OpRET, 0),
	)
	fn := NewCodeFunction("inc", inner, value.NewNamespace(), nil, 1, 1, 0)

	statics := []object.Object{fn, intVal(9)}
	code := buildCode("outer", statics, nil, 0, 4,
		op(bytecode.OpLSTATIC, 0),
		op(bytecode.OpLSTATIC, 1),
		op(bytecode.OpCALL, 1),
		op(bytecode.OpRET, 0),
	)

	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	got, ok := fr.ReturnValue.(*value.Int)
	if !ok || got.Value != 10 {
		t.Fatalf("return value = %v, want Int(10)", fr.ReturnValue)
	}
}

func TestMKLTBuildsListOfGivenLength(t *testing.T) {
	f := newTestFiber()
	statics := []object.Object{intVal(1), intVal(2), intVal(3)}
	code := buildCode("list", statics, nil, 0, 4,
		op(bytecode.OpLSTATIC, 0),
		op(bytecode.OpLSTATIC, 1),
		op(bytecode.OpLSTATIC, 2),
		op(bytecode.OpMKLT, 3),
		op(bytecode.OpRET, 0),
	)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	lst, ok := fr.ReturnValue.(*value.List)
	if !ok {
		t.Fatalf("return value = %T, want *value.List", fr.ReturnValue)
	}
	count := 0
	lst.Each(nil, func(object.Object) bool { count++; return true })
	if count != 3 {
		t.Fatalf("list length = %d, want 3", count)
	}
}

func TestMKDTBuildsDictFromKeyValuePairs(t *testing.T) {
	f := newTestFiber()
	key := value.NewString("k")
	statics := []object.Object{key, intVal(5)}
	code := buildCode("dict", statics, nil, 0, 4,
		op(bytecode.OpLSTATIC, 0),
		op(bytecode.OpLSTATIC, 1),
		op(bytecode.OpMKDT, 1),
		op(bytecode.OpRET, 0),
	)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	d, ok := fr.ReturnValue.(*value.Dict)
	if !ok {
		t.Fatalf("return value = %T, want *value.Dict", fr.ReturnValue)
	}
	v, found, err := d.Get(nil, key)
	if err != nil {
		t.Fatalf("Dict.Get: %v", err)
	}
	if !found {
		t.Fatal("expected key \"k\" to be present")
	}
	if got, ok := v.(*value.Int); !ok || got.Value != 5 {
		t.Fatalf("d[\"k\"] = %v, want Int(5)", v)
	}
}

func TestDeferRunsBeforeFrameReturnsButDoesNotOverrideReturnValue(t *testing.T) {
	f := newTestFiber()
	ns := value.NewNamespace()
	statics := []object.Object{intVal(7)}

	jc := &jumpCode{}
	dfrAt := jc.emit(bytecode.OpDFR, 0)
	jc.emit(bytecode.OpLSTATIC, 0)
	jc.emit(bytecode.OpRET, 0)
	deferTarget := len(jc.instr)
	jc.emit(bytecode.OpLSTATIC, 0)
	jc.emit(bytecode.OpPOP, 0)
	jc.emit(bytecode.OpRET, 0)
	jc.patchTarget(dfrAt, deferTarget)

	code := bytecode.NewCode("defer", jc.instr, statics, nil, nil, nil, 2, 0, nil)
	fr := fiber.NewFrame(f, code, ns, false)

	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	if got, ok := fr.ReturnValue.(*value.Int); !ok || got.Value != 7 {
		t.Fatalf("return value = %v, want Int(7) from the main body", fr.ReturnValue)
	}
	if len(fr.Defers) != 0 {
		t.Fatalf("expected Defers drained after RunFrame, got %d left", len(fr.Defers))
	}
}

func TestJEXCatchesAndResumesAtHandler(t *testing.T) {
	f := newTestFiber()
	statics := []object.Object{intVal(99)}

	jc := &jumpCode{}
	jc.emit(bytecode.OpIMPFRM, 0) // always errors: no importer is wired in
	jc.emit(bytecode.OpJEX, 0)    // handler marker findTrap scans forward to
	jc.emit(bytecode.OpLSTATIC, 0)
	jc.emit(bytecode.OpRET, 0)

	code := bytecode.NewCode("trap", jc.instr, statics, nil, nil, nil, 3, 0, nil)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)

	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error, want the JEX handler to have caught it: %v", err)
	}
	got, ok := fr.ReturnValue.(*value.Int)
	if !ok || got.Value != 99 {
		t.Fatalf("return value = %v, want Int(99) from the trap handler", fr.ReturnValue)
	}
}

func TestLDMETHBindsReceiverForSubsequentCall(t *testing.T) {
	f := newTestFiber()

	var receiverSeen object.Object
	method := NewNativeFunction("greet", 0, 0, 0, nil,
		func(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
			receiverSeen = self
			return value.NewInt(1), nil
		})

	recvType := &object.TypeInfo{
		Name:            "Greeter",
		Flags:           object.FlagStruct,
		Methods:         map[string]object.Object{"greet": method},
		NamespaceOffset: -1,
	}
	if err := object.TypeInit(recvType); err != nil {
		t.Fatalf("TypeInit: %v", err)
	}
	recv := &stubObject{}
	recv.Hdr.Init(recvType, false)

	statics := []object.Object{value.NewString("greet")}
	code := buildCode("method", statics, nil, 0, 3,
		op(bytecode.OpLDMETH, 0), // pops the receiver pushed just before
		op(bytecode.OpCALL, 0),   // argc=0, mode=0
		op(bytecode.OpRET, 0),
	)
	fr := fiber.NewFrame(f, code, value.NewNamespace(), false)
	fr.Push(recv)

	if err := RunFrame(f, fr); err != nil {
		t.Fatalf("RunFrame returned error: %v", err)
	}
	if receiverSeen != object.Object(recv) {
		t.Fatalf("native method saw self = %v, want the bound receiver", receiverSeen)
	}
}

// stubObject is a minimal object.Object used to exercise method binding
// without pulling in a full struct/trait instance type.
type stubObject struct {
	Hdr object.Header
}

func (s *stubObject) Header() *object.Header { return &s.Hdr }
