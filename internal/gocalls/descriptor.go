package gocalls

import (
	"go/ast"
	"go/types"
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/forbidscan/internal/callsite"
)

// instantiates reports whether f[x] in callee position instantiates a generic
// function (Map[int]) rather than indexing a value (handlers[0])
type instantiates func(*ast.IndexExpr) bool

// callDescriptor exposes a Go call expression as a call-site descriptor.
// Go has no constructor syntax, so only plain and qualified calls are produced.
type callDescriptor struct {
	call       *ast.CallExpr
	isInstance instantiates
}

// Describe adapts a Go call expression to a callsite.Descriptor. Without the
// enclosing file only predeclared types and type literals are recognized as
// instantiation arguments.
func Describe(call *ast.CallExpr) callsite.Descriptor {
	return describe(call, (*fileScope)(nil).instantiates)
}

func describe(call *ast.CallExpr, isInstance instantiates) callDescriptor {
	return callDescriptor{call: call, isInstance: isInstance}
}

func (d callDescriptor) Kind() callsite.Kind {
	if d.call == nil {
		return callsite.KindNone
	}
	switch d.callee().(type) {
	case *ast.Ident:
		return callsite.KindPlainCall
	case *ast.SelectorExpr:
		return callsite.KindQualifiedCall
	default:
		// func literals, calls of call results, index expressions into slices or maps of funcs
		return callsite.KindNone
	}
}

func (d callDescriptor) Name() string {
	if d.call == nil {
		return ""
	}
	switch fun := d.callee().(type) {
	case *ast.Ident:
		return fun.Name
	case *ast.SelectorExpr:
		return fun.Sel.Name
	default:
		return ""
	}
}

func (d callDescriptor) Arguments() (int, bool) {
	if d.call == nil {
		return 0, false
	}
	return len(d.call.Args), true
}

// callee strips parentheses and explicit generic instantiation from the called expression
func (d callDescriptor) callee() ast.Expr {
	expr := d.call.Fun
	for {
		switch e := expr.(type) {
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexListExpr:
			// values take a single index; several can only be type arguments
			expr = e.X
		case *ast.IndexExpr:
			if d.isInstance == nil || !d.isInstance(e) {
				return e
			}
			expr = e.X
		default:
			return expr
		}
	}
}

// typedInstances decides instantiation from the type checker's record
func typedInstances(info *types.Info) instantiates {
	return func(e *ast.IndexExpr) bool {
		id := calleeIdent(e.X)
		if id == nil {
			return false
		}
		_, ok := info.Instances[id]
		return ok
	}
}

func calleeIdent(expr ast.Expr) *ast.Ident {
	switch e := expr.(type) {
	case *ast.Ident:
		return e
	case *ast.SelectorExpr:
		return e.Sel
	case *ast.ParenExpr:
		return calleeIdent(e.X)
	default:
		return nil
	}
}

var predeclaredTypes = map[string]bool{
	"any": true, "bool": true, "byte": true, "comparable": true, "error": true, "rune": true, "string": true,
	"complex64": true, "complex128": true, "float32": true, "float64": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true, "uintptr": true,
}

// fileScope holds the names of one file that can stand for a type without
// type checking: declared types, type parameters and imported packages
type fileScope struct {
	types   map[string]bool
	imports map[string]bool
}

func newFileScope(file *ast.File) *fileScope {
	s := &fileScope{types: make(map[string]bool), imports: make(map[string]bool)}
	for _, imp := range file.Imports {
		s.imports[importName(imp)] = true
	}
	ast.Inspect(file, func(n ast.Node) bool {
		switch n := n.(type) {
		case *ast.TypeSpec:
			s.types[n.Name.Name] = true
		case *ast.FuncType:
			if n.TypeParams != nil {
				for _, field := range n.TypeParams.List {
					for _, name := range field.Names {
						s.types[name.Name] = true
					}
				}
			}
		}
		return true
	})
	return s
}

var majorVersion = regexp.MustCompile(`^v[0-9]+$`)

// importName guesses the package name of an unnamed import from its path
func importName(imp *ast.ImportSpec) string {
	if imp.Name != nil {
		return imp.Name.Name
	}
	p, err := strconv.Unquote(imp.Path.Value)
	if err != nil {
		return ""
	}
	name := path.Base(p)
	if majorVersion.MatchString(name) && path.Dir(p) != "." {
		name = path.Base(path.Dir(p))
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return strings.TrimPrefix(name, "go-")
}

func (s *fileScope) instantiates(e *ast.IndexExpr) bool {
	return s.isType(e.Index)
}

func (s *fileScope) isType(expr ast.Expr) bool {
	switch e := expr.(type) {
	case *ast.ArrayType, *ast.MapType, *ast.FuncType, *ast.ChanType, *ast.StructType, *ast.InterfaceType:
		return true
	case *ast.StarExpr:
		return s.isType(e.X)
	case *ast.ParenExpr:
		return s.isType(e.X)
	case *ast.IndexExpr:
		return s.isType(e.X)
	case *ast.IndexListExpr:
		return s.isType(e.X)
	case *ast.Ident:
		return predeclaredTypes[e.Name] || (s != nil && s.types[e.Name])
	case *ast.SelectorExpr:
		pkg, ok := e.X.(*ast.Ident)
		return ok && s != nil && s.imports[pkg.Name] && ast.IsExported(e.Sel.Name)
	default:
		return false
	}
}
