// Package source builds type descriptors from Go source on disk.
//
// A Store parses every non-test .go file in a single directory and serves
// one descriptor per interface and struct declaration, named
// <package>.<TypeName>. Interfaces become Interface-kind descriptors whose
// operations are all abstract, with locally declared embedded interfaces
// flattened in. Structs become Concrete-kind descriptors carrying their
// declared fields, their receiver methods as body-less operations, and the
// first embedded local struct as the supertype.
package source

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dave/dst"
	"github.com/dave/dst/decorator"

	"github.com/faekit/changeling"
)

// ErrNoSource reports a directory that yields no usable Go declarations.
var ErrNoSource = errors.New("no Go source found")

// Store serves type descriptors parsed from a directory of Go source.
// Descriptors are built once at construction and never change afterwards, so
// a Store is safe for concurrent use. Treat fetched descriptors as immutable.
type Store struct {
	dir   string
	types map[string]*changeling.TypeDescriptor
}

// NewStore parses the non-test .go files under dir and indexes every
// interface and struct declaration found there. Files that fail to parse are
// skipped; a directory yielding no type declarations at all is an error.
func NewStore(dir string) (*Store, error) {
	files, err := parseDir(dir)
	if err != nil {
		return nil, err
	}

	types := make(map[string]*changeling.TypeDescriptor)

	for _, pkg := range collectPackages(files) {
		pkg.buildInto(types)
	}

	if len(types) == 0 {
		return nil, fmt.Errorf("%w: no type declarations in %s", ErrNoSource, dir)
	}

	return &Store{dir: dir, types: types}, nil
}

// Dir returns the directory the store was built from.
func (s *Store) Dir() string {
	return s.dir
}

// Fetch returns the descriptor for a qualified type name. The result is the
// store's own copy; treat it as immutable.
func (s *Store) Fetch(name string) (*changeling.TypeDescriptor, error) {
	desc, ok := s.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", changeling.ErrNotFound, name)
	}

	return desc, nil
}

// Names returns the sorted qualified names of every parsed type.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.types))
	for name := range s.types {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// parseDir parses the non-test .go files in dir. Files that do not parse are
// skipped rather than failing the whole store.
func parseDir(dir string) ([]*dst.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	fset := token.NewFileSet()
	dec := decorator.NewDecorator(fset)

	var files []*dst.File

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") ||
			strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		file, err := dec.ParseFile(filepath.Join(dir, entry.Name()), nil, 0)
		if err != nil {
			continue
		}

		files = append(files, file)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no parsable .go files in %s", ErrNoSource, dir)
	}

	return files, nil
}

// packageDecls gathers one package's type and method declarations ahead of
// descriptor construction, so type references can be qualified against the
// full set of local names.
type packageDecls struct {
	name       string
	interfaces map[string]*dst.InterfaceType
	structs    map[string]*dst.StructType
	methods    map[string][]*dst.FuncDecl
}

// collectPackages groups type specs and receiver methods by package name.
// Directories normally hold one package, but external test packages and
// stray mains get their own group rather than polluting the primary one.
func collectPackages(files []*dst.File) map[string]*packageDecls {
	packages := make(map[string]*packageDecls)

	for _, file := range files {
		pkg, ok := packages[file.Name.Name]
		if !ok {
			pkg = &packageDecls{
				name:       file.Name.Name,
				interfaces: make(map[string]*dst.InterfaceType),
				structs:    make(map[string]*dst.StructType),
				methods:    make(map[string][]*dst.FuncDecl),
			}
			packages[file.Name.Name] = pkg
		}

		pkg.collectFile(file)
	}

	return packages
}

// collectFile records the file's interface and struct declarations and its
// receiver methods. Aliases and other type specs have no object shape to
// describe and are ignored.
func (p *packageDecls) collectFile(file *dst.File) {
	for _, decl := range file.Decls {
		switch decl := decl.(type) {
		case *dst.GenDecl:
			if decl.Tok != token.TYPE {
				continue
			}

			for _, spec := range decl.Specs {
				typeSpec, ok := spec.(*dst.TypeSpec)
				if !ok {
					continue
				}

				switch typ := typeSpec.Type.(type) {
				case *dst.InterfaceType:
					p.interfaces[typeSpec.Name.Name] = typ
				case *dst.StructType:
					p.structs[typeSpec.Name.Name] = typ
				}
			}
		case *dst.FuncDecl:
			if decl.Recv == nil || len(decl.Recv.List) == 0 {
				continue
			}

			recv := receiverBaseName(decl.Recv.List[0].Type)
			p.methods[recv] = append(p.methods[recv], decl)
		}
	}
}

// receiverBaseName reduces a receiver type expression to the bare type name,
// dropping any pointer and type parameters.
func receiverBaseName(expr dst.Expr) string {
	name := strings.TrimPrefix(typeString(expr), "*")
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		name = name[:idx]
	}

	return name
}

// buildInto adds one descriptor per collected interface and struct.
func (p *packageDecls) buildInto(types map[string]*changeling.TypeDescriptor) {
	for name, iface := range p.interfaces {
		types[p.qualify(name)] = p.interfaceDescriptor(name, iface)
	}

	for name := range p.structs {
		types[p.qualify(name)] = p.structDescriptor(name)
	}
}

// qualify prefixes a local type name with the package name.
func (p *packageDecls) qualify(name string) string {
	return p.name + "." + name
}

// declaresType reports whether the package declares the named type.
func (p *packageDecls) declaresType(name string) bool {
	_, isInterface := p.interfaces[name]
	_, isStruct := p.structs[name]

	return isInterface || isStruct
}

// interfaceDescriptor builds an Interface-kind descriptor whose operations
// are all abstract.
func (p *packageDecls) interfaceDescriptor(name string, iface *dst.InterfaceType) *changeling.TypeDescriptor {
	return &changeling.TypeDescriptor{
		Name:       p.qualify(name),
		Kind:       changeling.KindInterface,
		Operations: p.interfaceOperations(iface, map[string]bool{name: true}),
	}
}

// interfaceOperations lists an interface's methods as abstract operations,
// recursing through locally declared embedded interfaces.
func (p *packageDecls) interfaceOperations(iface *dst.InterfaceType, visited map[string]bool) []changeling.Operation {
	if iface.Methods == nil {
		return nil
	}

	var ops []changeling.Operation

	for _, method := range iface.Methods.List {
		if len(method.Names) == 0 {
			ops = append(ops, p.embeddedOperations(method.Type, visited)...)
			continue
		}

		funcType, ok := method.Type.(*dst.FuncType)
		if !ok {
			continue
		}

		op := p.operation(method.Names[0].Name, funcType)
		op.Abstract = true

		ops = append(ops, op)
	}

	return ops
}

// embeddedOperations flattens a locally declared embedded interface into its
// operations. Embeds from other packages are not visible in this directory
// and contribute nothing.
func (p *packageDecls) embeddedOperations(expr dst.Expr, visited map[string]bool) []changeling.Operation {
	ident, ok := expr.(*dst.Ident)
	if !ok || visited[ident.Name] {
		return nil
	}

	visited[ident.Name] = true

	embedded, ok := p.interfaces[ident.Name]
	if !ok {
		return nil
	}

	return p.interfaceOperations(embedded, visited)
}

// structDescriptor builds a Concrete-kind descriptor: declared fields in
// source order, receiver methods as body-less operations, and the first
// embedded local struct as the supertype.
func (p *packageDecls) structDescriptor(name string) *changeling.TypeDescriptor {
	structType := p.structs[name]

	desc := &changeling.TypeDescriptor{
		Name: p.qualify(name),
		Kind: changeling.KindConcrete,
	}

	if structType.Fields != nil {
		for _, field := range structType.Fields.List {
			if len(field.Names) == 0 {
				p.addEmbedded(desc, field.Type)
				continue
			}

			for _, fieldName := range field.Names {
				desc.Fields = append(desc.Fields, changeling.Field{
					Name: fieldName.Name,
					Type: p.typeRef(field.Type),
				})
			}
		}
	}

	for _, method := range p.methods[name] {
		desc.Operations = append(desc.Operations, p.operation(method.Name.Name, method.Type))
	}

	return desc
}

// addEmbedded maps an embedded field onto the descriptor. The first embedded
// local struct becomes the supertype; every other embed stays a plain field
// named after its base type, matching how Go exposes it.
func (p *packageDecls) addEmbedded(desc *changeling.TypeDescriptor, expr dst.Expr) {
	base := embeddedBaseName(expr)
	if base == "" {
		return
	}

	if _, ok := p.structs[base]; ok && desc.SuperType == "" {
		desc.SuperType = p.qualify(base)
		return
	}

	desc.Fields = append(desc.Fields, changeling.Field{Name: base, Type: p.typeRef(expr)})
}

// embeddedBaseName extracts the field name Go gives an embedded type.
func embeddedBaseName(expr dst.Expr) string {
	switch typ := expr.(type) {
	case *dst.Ident:
		return typ.Name
	case *dst.StarExpr:
		return embeddedBaseName(typ.X)
	case *dst.SelectorExpr:
		return typ.Sel.Name
	default:
		return ""
	}
}

// operation builds an Operation from a method signature. The operation is
// concrete but body-less, so invoking it yields the default value for its
// return type.
func (p *packageDecls) operation(name string, funcType *dst.FuncType) changeling.Operation {
	op := changeling.Operation{Name: name}

	if funcType.Params != nil {
		op.Params = expandFieldTypes(funcType.Params.List, p.typeRef)
	}

	op.Returns, op.Errors = p.returnsRef(funcType.Results)

	return op
}

// returnsRef splits a result list into the value return and the declared
// errors. A trailing bare error result moves to the error list, Go's spelling
// of a declared failure channel; what remains renders empty for no results,
// the type itself for one, and a parenthesized tuple for several. Tuples have
// no table default, so body-less operations returning them yield nil.
func (p *packageDecls) returnsRef(results *dst.FieldList) (string, []string) {
	if results == nil || len(results.List) == 0 {
		return "", nil
	}

	parts := expandFieldTypes(results.List, p.typeRef)

	var errs []string

	if parts[len(parts)-1] == "error" {
		errs = []string{"error"}
		parts = parts[:len(parts)-1]
	}

	switch len(parts) {
	case 0:
		return "", errs
	case 1:
		return parts[0], errs
	default:
		return "(" + strings.Join(parts, ", ") + ")", errs
	}
}

// typeRef renders a type expression the way descriptors reference types:
// local named types gain the package qualifier so the store can resolve
// them, and pointers collapse to their element type, since descriptor
// references carry no pointer notion.
func (p *packageDecls) typeRef(expr dst.Expr) string {
	switch typ := expr.(type) {
	case *dst.Ident:
		if p.declaresType(typ.Name) {
			return p.qualify(typ.Name)
		}

		return typ.Name
	case *dst.StarExpr:
		return p.typeRef(typ.X)
	case *dst.ArrayType:
		if typ.Len == nil {
			return "[]" + p.typeRef(typ.Elt)
		}

		return typeString(expr)
	default:
		return typeString(expr)
	}
}
