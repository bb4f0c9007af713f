package interp

import (
	"fmt"
	"strings"

	zerrors "github.com/zephyr-lang/zephyr/internal/errors"
	"github.com/zephyr-lang/zephyr/internal/object"
)

// Param is one positional parameter slot of a PCheck: a name plus the set
// of types the VM accepts there, grounded on argon/vm/datatype/pcheck.h's
// Param{name, types[]}.
type Param struct {
	Name  string
	Types []*object.TypeInfo
}

// PCheck enumerates a native function's positional parameters and the
// types accepted at each, checked by the VM before a native dispatch
// (spec §4.14 "a method's pcheck structure enumerates positional
// parameters and a set of accepted types per parameter").
type PCheck struct {
	Params []Param
}

// NewPCheck parses a comma-separated "letters:name" description, the same
// shape as PCheckNew's description string, resolving each letter through
// letterTypes (a caller-supplied alphabet, since Zephyr's built-in type
// set differs from Argon's). An empty description yields a PCheck with no
// params (a zero-arity native).
func NewPCheck(description string, letterTypes map[rune]*object.TypeInfo) (*PCheck, error) {
	pc := &PCheck{}
	description = strings.TrimSpace(description)
	if description == "" {
		return pc, nil
	}

	for _, field := range strings.Split(description, ",") {
		field = strings.TrimSpace(field)
		idx := strings.IndexByte(field, ':')
		if idx < 0 {
			return nil, zerrors.New(zerrors.KindValue, "PCHECK_MALFORMED",
				fmt.Sprintf("expected ':' after type[s] definition in %q", field), nil)
		}
		letters, name := field[:idx], strings.TrimSpace(field[idx+1:])
		if name == "" {
			return nil, zerrors.New(zerrors.KindValue, "PCHECK_MALFORMED",
				fmt.Sprintf("expected a parameter name in %q", field), nil)
		}

		param := Param{Name: name}
		for _, r := range letters {
			if r == '?' {
				continue // "any type accepted" marker: leave Types empty
			}
			t, ok := letterTypes[r]
			if !ok {
				return nil, zerrors.New(zerrors.KindValue, "PCHECK_MALFORMED",
					fmt.Sprintf("unknown type letter %q in %q", r, field), nil)
			}
			param.Types = append(param.Types, t)
		}
		pc.Params = append(pc.Params, param)
	}
	return pc, nil
}

// VariadicCheckPositional reports a TypeError-shaped *RuntimeError when
// nargs falls outside [min, max] (max == min means an exact arity), the
// same bound as argon's VariadicCheckPositional.
func VariadicCheckPositional(name string, nargs, min, max int) *zerrors.RuntimeError {
	if nargs < min {
		qualifier := "at least "
		if min == max {
			qualifier = ""
		}
		return zerrors.New(zerrors.KindType, "ARITY_MISMATCH",
			fmt.Sprintf("%s expected %s%d argument%s, got %d", name, qualifier, min, plural(min), nargs), nil)
	}
	if max > min && nargs > max {
		return zerrors.New(zerrors.KindType, "ARITY_MISMATCH",
			fmt.Sprintf("%s expected at most %d argument%s, got %d", name, max, plural(max), nargs), nil)
	}
	return nil
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// CheckPositional type-checks args against pc, returning the first
// mismatch found. A Param with no Types accepts anything.
func (pc *PCheck) CheckPositional(funcName string, args []object.Object) *zerrors.RuntimeError {
	for i, p := range pc.Params {
		if i >= len(args) || len(p.Types) == 0 {
			continue
		}
		got := args[i].Header().Type()
		ok := false
		for _, want := range p.Types {
			if got == want {
				ok = true
				break
			}
		}
		if !ok {
			return zerrors.New(zerrors.KindType, "PARAM_TYPE_MISMATCH",
				fmt.Sprintf("%s(): parameter %q expects %s, got %s", funcName, p.Name, typeNames(p.Types), got.Name), nil)
		}
	}
	return nil
}

func typeNames(types []*object.TypeInfo) string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return strings.Join(names, "|")
}

// KParamLookup reads key from kwargs (nil-safe), returning def when
// kwargs is nil or the key is absent, mirroring KParamLookup's
// "nil kwargs means every key is at its default" rule.
func KParamLookup(kwargs object.AttributeMap, key string, def object.Object) object.Object {
	if kwargs == nil {
		return def
	}
	if v, _, ok := kwargs.Get(key); ok {
		return v
	}
	return def
}

// KParamLookupBool is KParamLookup specialized to a truthy coercion.
func KParamLookupBool(kwargs object.AttributeMap, key string, def bool) bool {
	if kwargs == nil {
		return def
	}
	v, _, ok := kwargs.Get(key)
	if !ok {
		return def
	}
	return object.Truthy(v)
}
