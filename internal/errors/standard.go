// Package errors provides the runtime error taxonomy shared by every
// subsystem of the Zephyr core: allocator, object model, fiber scheduler,
// compiler IR, and event loop all raise a *RuntimeError rather than an
// ad-hoc string.
package errors

import (
	"fmt"
	"runtime"
)

// Kind is the panic kind-tag carried by every RuntimeError, matching the
// set a fiber's panic slot may hold.
type Kind string

const (
	KindType         Kind = "TypeError"
	KindValue        Kind = "ValueError"
	KindRuntime      Kind = "RuntimeError"
	KindOverflow     Kind = "OverflowError"
	KindKey          Kind = "KeyError"
	KindAttribute    Kind = "AttributeError"
	KindUnassignable Kind = "UnassignableError"
	KindExit         Kind = "RuntimeExit"
	KindImport       Kind = "ModuleImportError"
	KindUnicode      Kind = "UnicodeError"
)

// RuntimeError is the value a fiber's panic slot holds while unwinding.
// Code is a short machine-readable discriminator within Kind; Context
// carries structured detail for diagnostics without building a message
// string eagerly on hot paths.
type RuntimeError struct {
	Kind    Kind
	Code    string
	Message string
	Context map[string]interface{}
	Caller  string
	Cause   *RuntimeError
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s (caller: %s): %s", e.Kind, e.Code, e.Message, e.Caller, e.Cause.Error())
	}
	return fmt.Sprintf("[%s:%s] %s (caller: %s)", e.Kind, e.Code, e.Message, e.Caller)
}

// Unwrap exposes Cause to errors.Is/errors.As.
func (e *RuntimeError) Unwrap() error {
	if e.Cause == nil {
		return nil
	}
	return e.Cause
}

// New creates a RuntimeError with the immediate caller recorded.
func New(kind Kind, code, message string, context map[string]interface{}) *RuntimeError {
	pc, _, _, ok := runtime.Caller(1)
	caller := "unknown"
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			caller = fn.Name()
		}
	}
	return &RuntimeError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Context: context,
		Caller:  caller,
	}
}

// Chain wraps an older panic as the cause of a newer one, mirroring the
// unwinding rule in spec §7: a destructor that panics while the fiber is
// already unwinding chains the earlier error as Cause rather than
// discarding it.
func Chain(newer, older *RuntimeError) *RuntimeError {
	newer.Cause = older
	return newer
}

// Common constructors used throughout the core.

func IndexOutOfBounds(index, length int) *RuntimeError {
	return New(KindValue, "INDEX_OUT_OF_BOUNDS",
		fmt.Sprintf("index %d out of bounds for length %d", index, length),
		map[string]interface{}{"index": index, "length": length})
}

func IntegerOverflow(operation string, values ...interface{}) *RuntimeError {
	return New(KindOverflow, "INTEGER_OVERFLOW",
		fmt.Sprintf("integer overflow in %s operation", operation),
		map[string]interface{}{"operation": operation, "values": values})
}

func DivisionByZero(operation string) *RuntimeError {
	return New(KindValue, "DIVISION_BY_ZERO",
		fmt.Sprintf("division by zero in %s", operation),
		map[string]interface{}{"operation": operation})
}

func KeyNotFound(key interface{}) *RuntimeError {
	return New(KindKey, "KEY_NOT_FOUND",
		fmt.Sprintf("key not found: %v", key),
		map[string]interface{}{"key": key})
}

func AttributeNotFound(typeName, attr string) *RuntimeError {
	return New(KindAttribute, "ATTRIBUTE_NOT_FOUND",
		fmt.Sprintf("%s has no attribute %q", typeName, attr),
		map[string]interface{}{"type": typeName, "attribute": attr})
}

func Unassignable(typeName, attr string) *RuntimeError {
	return New(KindUnassignable, "UNASSIGNABLE",
		fmt.Sprintf("attribute %q of %s is not assignable", attr, typeName),
		map[string]interface{}{"type": typeName, "attribute": attr})
}

func TypeMismatch(expected, got string) *RuntimeError {
	return New(KindType, "TYPE_MISMATCH",
		fmt.Sprintf("expected %s, got %s", expected, got),
		map[string]interface{}{"expected": expected, "got": got})
}

func Unhashable(typeName string) *RuntimeError {
	return New(KindType, "UNHASHABLE_TYPE",
		fmt.Sprintf("unhashable type: %s", typeName),
		map[string]interface{}{"type": typeName})
}

func OutOfMemory(size uintptr) *RuntimeError {
	return New(KindRuntime, "OUT_OF_MEMORY",
		fmt.Sprintf("allocation of %d bytes failed", size),
		map[string]interface{}{"size": size})
}

func ModuleImport(name, reason string) *RuntimeError {
	return New(KindImport, "MODULE_IMPORT_FAILED",
		fmt.Sprintf("cannot import %q: %s", name, reason),
		map[string]interface{}{"module": name, "reason": reason})
}

func CyclicImport(name string) *RuntimeError {
	return New(KindImport, "CYCLIC_IMPORT",
		fmt.Sprintf("cyclic import detected while loading %q", name),
		map[string]interface{}{"module": name})
}

func Exit(code int) *RuntimeError {
	return New(KindExit, "EXIT", fmt.Sprintf("exit(%d)", code),
		map[string]interface{}{"code": code})
}
