package spaview

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/a-h/templ"
)

var (
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	componentType = reflect.TypeOf((*templ.Component)(nil)).Elem()
	routeNodeType = reflect.TypeOf((*RouteNode)(nil))
)

type parseContext struct {
	deps depRegistry
}

// ParseRoutes builds a route tree from a struct. Fields tagged with
// `route:"pattern Name"` become child routes. Methods on the struct declare
// the node's views:
//
//	View(...) templ.Component               // eager view
//	Load(ctx, ...) (templ.Component, error) // deferred view
//	Index(...) templ.Component              // index view
//	Init(...) error                         // called once while parsing
//
// Parameters after the fixed ones are filled from deps by type; a parameter of
// type *RouteNode receives the node being built. The result still has to be
// passed to [NewRouteTable].
func ParseRoutes(route string, page any, deps ...any) (*RouteNode, error) {
	pc := &parseContext{deps: make(depRegistry)}
	for _, v := range deps {
		if err := pc.deps.add(v); err != nil {
			return nil, fmt.Errorf("parse routes: %w", err)
		}
	}
	return pc.parse(route, "", page)
}

// MustParseRoutes is like ParseRoutes but panics on error.
func MustParseRoutes(route string, page any, deps ...any) *RouteNode {
	n, err := ParseRoutes(route, page, deps...)
	if err != nil {
		panic(err)
	}
	return n
}

func (p *parseContext) parse(route, fieldName string, page any) (*RouteNode, error) {
	if page == nil {
		return nil, errors.New("parse routes: nil page")
	}
	v := reflect.ValueOf(page)
	if v.Kind() != reflect.Ptr {
		pv := reflect.New(v.Type())
		pv.Elem().Set(v)
		v = pv
	}
	st := v.Type().Elem()
	if st.Kind() != reflect.Struct {
		return nil, fmt.Errorf("parse routes: %s is not a struct", st)
	}

	path, name := parseTag(route)
	node := &RouteNode{Path: path, Name: cmp.Or(name, fieldName, st.Name())}

	for i := range st.NumField() {
		field := st.Field(i)
		route, ok := field.Tag.Lookup("route")
		if !ok {
			continue
		}
		typ := field.Type
		if typ.Kind() == reflect.Ptr {
			typ = typ.Elem()
		}
		child, err := p.parse(route, field.Name, reflect.New(typ).Interface())
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}

	methods := make(map[string]reflect.Method)
	for _, t := range []reflect.Type{st, v.Type()} {
		for i := range t.NumMethod() {
			method := t.Method(i)
			if isPromotedMethod(&method) {
				continue
			}
			if _, seen := methods[method.Name]; !seen {
				methods[method.Name] = method
			}
		}
	}

	if m, ok := methods["Init"]; ok {
		res, err := p.callMethod(node, v, &m)
		if err == nil {
			_, err = extractError(res)
		}
		if err != nil {
			return nil, fmt.Errorf("parse routes: %s.Init: %w", node.Name, err)
		}
	}
	_, hasView := methods["View"]
	_, hasLoad := methods["Load"]
	if hasView && hasLoad {
		return nil, fmt.Errorf("parse routes: %s declares both View and Load", node.Name)
	}
	if m, ok := methods["View"]; ok {
		comp, err := p.callComponent(node, v, &m)
		if err != nil {
			return nil, err
		}
		node.View = Eager{View: &View{Name: node.Name, Component: comp}}
	}
	if m, ok := methods["Index"]; ok {
		comp, err := p.callComponent(node, v, &m)
		if err != nil {
			return nil, err
		}
		node.Index = &View{Name: node.Name + "Index", Component: comp}
	}
	if m, ok := methods["Load"]; ok {
		load, err := p.loader(node, v, m)
		if err != nil {
			return nil, err
		}
		node.View = Deferred{Load: load}
	}
	return node, nil
}

// loader wraps a Load method as a [Loader].
func (p *parseContext) loader(node *RouteNode, v reflect.Value, method reflect.Method) (Loader, error) {
	mt := method.Type
	if mt.NumIn() < 2 || mt.In(1) != contextType {
		return nil, fmt.Errorf("parse routes: %s must take context.Context first", formatMethod(&method))
	}
	if mt.NumOut() != 2 || !mt.Out(0).Implements(componentType) || mt.Out(1) != errorType {
		return nil, fmt.Errorf("parse routes: %s must return (templ.Component, error)", formatMethod(&method))
	}
	return func(ctx context.Context) (*View, error) {
		res, err := p.callMethod(node, v, &method, reflect.ValueOf(&ctx).Elem())
		if err != nil {
			return nil, err
		}
		res, err = extractError(res)
		if err != nil {
			return nil, err
		}
		comp, _ := res[0].Interface().(templ.Component)
		return &View{Name: node.Name, Component: comp}, nil
	}, nil
}

func (p *parseContext) callComponent(node *RouteNode, v reflect.Value, method *reflect.Method) (templ.Component, error) {
	res, err := p.callMethod(node, v, method)
	if err != nil {
		return nil, fmt.Errorf("parse routes: %w", err)
	}
	if len(res) != 1 {
		return nil, fmt.Errorf("parse routes: %s must return a single templ.Component", formatMethod(method))
	}
	comp, ok := res[0].Interface().(templ.Component)
	if !ok || comp == nil {
		return nil, fmt.Errorf("parse routes: %s did not return a templ.Component", formatMethod(method))
	}
	return comp, nil
}

// callMethod calls method on the pointer value v. Arguments beyond args are
// injected from the dependency registry.
func (p *parseContext) callMethod(node *RouteNode, v reflect.Value, method *reflect.Method,
	args ...reflect.Value) ([]reflect.Value, error) {
	if method.Type.In(0).Kind() != reflect.Ptr {
		v = v.Elem()
	}
	in := make([]reflect.Value, method.Type.NumIn())
	in[0] = v
	filled := 1
	for i := range min(len(in)-1, len(args)) {
		in[i+1] = args[i]
		filled++
	}
	for i := filled; i < len(in); i++ {
		argType := method.Type.In(i)
		if argType == routeNodeType {
			in[i] = reflect.ValueOf(node)
			continue
		}
		val, ok := p.deps.get(argType)
		if !ok {
			return nil, fmt.Errorf("method %s requires argument of type %s, but not found",
				formatMethod(method), argType)
		}
		in[i] = val
	}
	return method.Func.Call(in), nil
}

// parseTag splits a route tag into its pattern and an optional node name.
func parseTag(route string) (path, name string) {
	parts := strings.Fields(route)
	if len(parts) == 0 {
		return "/", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func extractError(args []reflect.Value) ([]reflect.Value, error) {
	if len(args) >= 1 && args[len(args)-1].Type() == errorType {
		i := args[len(args)-1].Interface()
		args = args[:len(args)-1]
		if i == nil {
			return args, nil
		}
		return args, i.(error)
	}
	return args, nil
}

func formatMethod(method *reflect.Method) string {
	if method == nil || method.Func == (reflect.Value{}) {
		return "<nil>"
	}
	return fmt.Sprintf("%s.%s", method.Type.In(0).String(), method.Name)
}

func isPromotedMethod(method *reflect.Method) bool {
	// Check if the method is promoted from an embedded type
	// https://github.com/golang/go/issues/73883
	wPC := method.Func.Pointer()
	wFunc := runtime.FuncForPC(wPC)
	wFile, wLine := wFunc.FileLine(wPC)
	return wFile == "<autogenerated>" && wLine == 1
}
