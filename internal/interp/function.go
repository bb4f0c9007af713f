package interp

import (
	"github.com/zephyr-lang/zephyr/internal/bytecode"
	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/fiber"
	"github.com/zephyr-lang/zephyr/internal/gc"
	"github.com/zephyr-lang/zephyr/internal/object"
	"github.com/zephyr-lang/zephyr/internal/value"
)

// FunctionFlags are the boolean facets spec §4.14 and
// function_member_get_is* accessors expose (IsNative, IsVariadic,
// IsKWArgs, IsMethod, IsAsync, IsGenerator, IsRecoverable).
type FunctionFlags uint16

const (
	FlagNative FunctionFlags = 1 << iota
	FlagVariadic
	FlagKwArgs
	FlagMethod
	FlagAsync
	FlagGenerator
	FlagRecoverable
)

// NativeFn is the call signature spec §4.14 describes: "the callee
// function object, an optional receiver, an argument array, a keyword
// argument dict (or none)". The argument count is simply len(args).
type NativeFn func(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error)

// Function is a callable value: either a native Go closure or a compiled
// Code body plus its enclosed (closure-captured) values, mirroring
// argon/vm/datatype/function.cpp's single Function type covering both.
type Function struct {
	Hdr object.Header
	gch gc.GCHead

	Name, QName, Doc string

	Code   *bytecode.Code // nil when Flags&FlagNative != 0
	Native NativeFn       // nil otherwise

	Flags FunctionFlags

	// Arity is the declared number of positional parameters; MinArity is
	// how many of those lack a default (spec §4.14's pcheck arity bound).
	Arity    int
	MinArity int

	PCheck *PCheck // native functions only

	Enclosed    []object.Object
	DefaultArgs []object.Object
	Base        object.Object // bound receiver, for methods

	// Globals is the module namespace LDGBL/STATTR resolve against; it
	// is shared by every frame this Function spawns, not recreated per
	// call (module linkage lives in internal/importer, not yet wired
	// in, so callers that don't care may pass a fresh value.NewNamespace()).
	Globals object.AttributeMap
}

func (fn *Function) Header() *object.Header { return &fn.Hdr }
func (fn *Function) GCHead() *gc.GCHead     { return &fn.gch }

// NewNativeFunction builds a native-backed Function.
func NewNativeFunction(name string, arity, minArity int, flags FunctionFlags, pc *PCheck, fn NativeFn) *Function {
	f := &Function{
		Name: name, QName: name,
		Native: fn, Flags: flags | FlagNative,
		Arity: arity, MinArity: minArity,
		PCheck: pc,
	}
	f.Hdr.Init(FunctionType, false)
	return f
}

// NewCodeFunction builds a Function backed by compiled code and its
// closure captures. globals is the module namespace shared by every
// frame this function spawns.
func NewCodeFunction(name string, code *bytecode.Code, globals object.AttributeMap, enclosed []object.Object, arity, minArity int, flags FunctionFlags) *Function {
	f := &Function{
		Name: name, QName: name,
		Code: code, Globals: globals, Enclosed: enclosed,
		Flags: flags &^ FlagNative,
		Arity: arity, MinArity: minArity,
	}
	f.Hdr.Init(FunctionType, false)
	return f
}

// Bind returns a shallow copy of fn with its receiver fixed to recv, the
// bound-method value LDMETH pushes so a later CALL can dispatch with the
// right self without a separate receiver slot surviving on the operand
// stack (spec §4.14's implicit receiver, grounded on LDMETH's declared
// "pushes bound method alongside receiver" effect, resolved here by
// folding the receiver into the callable itself rather than leaving it
// as a second stack slot for CALL to special-case).
func (fn *Function) Bind(recv object.Object) *Function {
	bound := *fn
	bound.Hdr = object.Header{}
	bound.Hdr.Init(FunctionType, false)
	bound.Base = recv
	return &bound
}

// massageArgs folds trailing positional extras into a rest Tuple when fn
// is variadic, matching spec §4.14 "trailing extras fold into a rest
// list". Non-variadic functions pass args through unchanged; the arity
// bound itself is enforced separately (VariadicCheckPositional/PCheck).
func (fn *Function) massageArgs(args []object.Object) []object.Object {
	if fn.Flags&FlagVariadic == 0 || len(args) <= fn.Arity {
		return args
	}
	fixed := append([]object.Object(nil), args[:fn.Arity]...)
	rest := value.NewTuple(args[fn.Arity:]...)
	return append(fixed, rest)
}

// arityBounds returns the [min, max] positional argument count fn
// accepts; a variadic function has no upper bound (reported as
// fn.Arity, with max==min suppressed by the caller via the variadic
// flag so VariadicCheckPositional's "at least" wording kicks in).
func (fn *Function) arityBounds() (min, max int) {
	if fn.Flags&FlagVariadic != 0 {
		return fn.MinArity, fn.MinArity // max==min signals no upper bound distinction below
	}
	return fn.MinArity, fn.Arity
}

// Call dispatches fn, massaging args per its declared flags and, for
// native functions, running pcheck's positional arity/type bound before
// invoking the Go closure; for code functions it allocates a new Frame
// off f's stack region and runs it to completion (spec §4.14, §3.8).
func (fn *Function) Call(f *fiber.Fiber, self object.Object, args []object.Object, kwargs object.AttributeMap) (object.Object, error) {
	if fn.Flags&FlagKwArgs == 0 {
		kwargs = nil
	}

	if fn.Flags&FlagVariadic != 0 {
		if len(args) < fn.MinArity {
			return nil, zerrors.New(zerrors.KindType, "ARITY_MISMATCH", "too few arguments to "+fn.QName, nil)
		}
	} else if err := VariadicCheckPositional(fn.QName, len(args), fn.MinArity, fn.Arity); err != nil {
		return nil, err
	}

	args = fn.massageArgs(args)

	if fn.Flags&FlagNative != 0 {
		if fn.PCheck != nil {
			if err := fn.PCheck.CheckPositional(fn.QName, args); err != nil {
				return nil, err
			}
		}
		return fn.Native(f, self, args, kwargs)
	}

	globals := fn.Globals
	if globals == nil {
		globals = value.NewNamespace()
	}
	fr := fiber.NewFrame(f, fn.Code, globals, false)
	fr.Instance = self
	fr.Enclosed = fn.Enclosed
	copy(fr.Locals, args)

	if err := RunFrame(f, fr); err != nil {
		f.DelFrame(fr)
		return nil, err
	}
	ret := fr.ReturnValue
	f.DelFrame(fr)
	return ret, nil
}

var FunctionType = &object.TypeInfo{
	Name:  "Function",
	Flags: object.FlagStruct | object.FlagGC,
	Repr: func(o object.Object) string {
		fn := o.(*Function)
		if fn.Flags&FlagNative != 0 {
			return "<native function " + fn.QName + ">"
		}
		return "<function " + fn.QName + ">"
	},
	Trace: func(self object.Object, visit func(object.Object)) {
		fn := self.(*Function)
		for _, e := range fn.Enclosed {
			visit(e)
		}
		for _, d := range fn.DefaultArgs {
			visit(d)
		}
	},
}
