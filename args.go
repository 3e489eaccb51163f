package spaview

import (
	"fmt"
	"reflect"
)

// depRegistry holds the values that ParseRoutes injects into page methods,
// keyed by their dynamic type.
type depRegistry map[reflect.Type]reflect.Value

func (deps depRegistry) add(v any) error {
	if v == nil {
		return nil
	}
	typ := reflect.TypeOf(v)
	if _, ok := deps[typ]; ok {
		return fmt.Errorf("duplicate dependency of type %s", typ)
	}
	deps[typ] = reflect.ValueOf(v)
	return nil
}

// get finds a value for a parameter of type want. Exact types win; otherwise a
// pointer is dereferenced for a value parameter, and any registered value
// assignable to want (e.g. to an interface) is accepted.
func (deps depRegistry) get(want reflect.Type) (reflect.Value, bool) {
	if v, ok := deps[want]; ok {
		return v, true
	}
	if want.Kind() != reflect.Ptr {
		if v, ok := deps[reflect.PointerTo(want)]; ok && !v.IsNil() {
			return v.Elem(), true
		}
	}
	for typ, v := range deps {
		if typ.AssignableTo(want) {
			return v, true
		}
	}
	return reflect.Value{}, false
}
