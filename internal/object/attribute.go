package object

import zerrors "github.com/zephyr-lang/zephyr/internal/errors"

// Namespaced is implemented by object bodies that embed a namespace at a
// fixed offset (NamespaceOffset >= 0 in their TypeInfo); rather than doing
// raw offset arithmetic as the C++ original does, Go objects expose their
// embedded namespace directly.
type Namespaced interface {
	Namespace() AttributeMap
}

// AttributeLoad resolves key on obj: the type's get_attr slot if present,
// otherwise the object's own embedded namespace, then the type's tp_map
// and Methods table walked along the MRO (spec §4.4).
func AttributeLoad(obj Object, key string, staticAttr bool) (Object, error) {
	t := obj.Header().Type()
	if t.GetAttr != nil {
		return t.GetAttr(obj, key, staticAttr)
	}

	if t.NamespaceOffset >= 0 {
		if ns, ok := obj.(Namespaced); ok {
			if v, _, found := ns.Namespace().Get(key); found {
				return v, nil
			}
		}
	}

	for _, anc := range mroOrSelf(t) {
		if anc.TPMap != nil {
			if v, _, found := anc.TPMap.Get(key); found {
				return v, nil
			}
		}
		if fn, found := anc.Methods[key]; found {
			return fn, nil
		}
	}

	return nil, zerrors.AttributeNotFound(t.Name, key)
}

// AttributeSet writes key on obj, honoring the type's set_attr slot when
// present, else the embedded namespace subject to AttrFlags gating.
func AttributeSet(obj Object, key string, value Object) error {
	t := obj.Header().Type()
	if t.SetAttr != nil {
		return t.SetAttr(obj, key, value)
	}

	if t.NamespaceOffset >= 0 {
		if ns, ok := obj.(Namespaced); ok {
			if _, flags, found := ns.Namespace().Get(key); found && flags&AttrConst != 0 {
				return zerrors.Unassignable(t.Name, key)
			}
			if ns.Namespace().Set(key, value, AttrPublic) {
				return nil
			}
		}
	}

	return zerrors.Unassignable(t.Name, key)
}

func mroOrSelf(t *TypeInfo) []*TypeInfo {
	if len(t.MRO) > 0 {
		return t.MRO
	}
	return []*TypeInfo{t}
}
