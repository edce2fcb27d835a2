// Package run implements the main logic of the descgen tool in a testable
// way.
package run

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/alexflint/go-arg"

	"github.com/faekit/changeling"
)

// Interfaces - Public

// FileSystem interface for mocking.
type FileSystem interface {
	WriteFile(name string, data []byte, perm os.FileMode) error
}

// Store serves parsed type descriptors by qualified name.
type Store interface {
	Fetch(name string) (*changeling.TypeDescriptor, error)
	Names() []string
}

// StoreOpener builds a Store over one directory of Go source.
type StoreOpener func(dir string) (Store, error)

// Structs - Private

// cliArgs defines the command-line arguments for the generator.
type cliArgs struct {
	Dir  string `arg:"positional,required" help:"directory of Go source to parse"`
	Type string `arg:"positional,required" help:"type to describe (e.g. Order or shop.Order)"`
	Name string `arg:"--name"              help:"name for the generated registration function (defaults to Register<Type>Descriptor)"`
}

// generatorInfo holds the names derived for one generation run.
type generatorInfo struct {
	funcName, pkgName, fileName string
}

// Functions - Public

// Run executes the descgen tool logic. It takes command-line arguments, an
// environment variable getter, a FileSystem for file operations, and a
// StoreOpener for parsing source directories. On success it writes a Go
// source file whose registration function adds the requested type's
// descriptor to a catalog.
func Run(args []string, getEnv func(string) string, fileSys FileSystem, openStore StoreOpener) error {
	parsed, err := parseArgs(args)
	if err != nil {
		return err
	}

	store, err := openStore(parsed.Dir)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}

	qualified, err := qualifiedTypeName(store, parsed.Type)
	if err != nil {
		return err
	}

	desc, err := store.Fetch(qualified)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", qualified, err)
	}

	info := deriveNames(parsed, qualified, getEnv("GOPACKAGE"))

	return writeGeneratedFile(renderDescriptorFile(desc, info.pkgName, info.funcName), info.fileName, fileSys)
}

// Functions - Private

// parseArgs parses command-line arguments into cliArgs.
func parseArgs(args []string) (cliArgs, error) {
	var parsed cliArgs

	parser, err := arg.NewParser(arg.Config{}, &parsed)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to create argument parser: %w", err)
	}

	var cmdArgs []string
	if len(args) > 1 {
		cmdArgs = args[1:]
	}

	err = parser.Parse(cmdArgs)
	if err != nil {
		return cliArgs{}, fmt.Errorf("failed to parse arguments: %w", err)
	}

	return parsed, nil
}

// qualifiedTypeName resolves a bare type name against the store's qualified
// names. Names that already carry a package qualifier pass through.
func qualifiedTypeName(store Store, name string) (string, error) {
	if strings.Contains(name, ".") {
		return name, nil
	}

	var matches []string

	for _, candidate := range store.Names() {
		if strings.HasSuffix(candidate, "."+name) {
			matches = append(matches, candidate)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s (store has %s)",
			changeling.ErrNotFound, name, strings.Join(store.Names(), ", "))
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %s", errAmbiguousType, name, strings.Join(matches, ", "))
	}
}

// deriveNames fixes the generated function, package, and file names from the
// parsed arguments and environment.
func deriveNames(parsed cliArgs, qualified, goPackage string) generatorInfo {
	pkgPart, localName, _ := strings.Cut(qualified, ".")

	funcName := parsed.Name
	if funcName == "" {
		funcName = "Register" + localName + "Descriptor"
	}

	pkgName := goPackage
	if pkgName == "" {
		pkgName = pkgPart
	}

	return generatorInfo{
		funcName: funcName,
		pkgName:  pkgName,
		fileName: outputFileName(localName, parsed.Name, pkgName),
	}
}

// outputFileName derives the generated file's name: snake case of the --name
// override when given, otherwise <type>_descriptor.go. Test packages get a
// _test.go suffix so the file stays test-scoped.
func outputFileName(localName, nameFlag, pkgName string) string {
	fileName := snakeCase(localName) + "_descriptor.go"
	if nameFlag != "" {
		fileName = snakeCase(nameFlag) + ".go"
	}

	if strings.HasSuffix(pkgName, "_test") && !strings.HasSuffix(fileName, "_test.go") {
		fileName = strings.TrimSuffix(fileName, ".go") + "_test.go"
	}

	return fileName
}

// snakeCase converts a CamelCase name to snake_case, keeping runs of
// capitals like ID together.
func snakeCase(name string) string {
	var buf strings.Builder

	runes := []rune(name)
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			buf.WriteRune(r)
			continue
		}

		prevLower := i > 0 && !unicode.IsUpper(runes[i-1])
		nextLower := i+1 < len(runes) && !unicode.IsUpper(runes[i+1])

		if i > 0 && (prevLower || nextLower) {
			buf.WriteByte('_')
		}

		buf.WriteRune(unicode.ToLower(r))
	}

	return buf.String()
}

// writeGeneratedFile writes the rendered code into the calling package.
func writeGeneratedFile(code string, fileName string, fileSys FileSystem) error {
	const generatedFilePermissions = 0o600

	err := fileSys.WriteFile(fileName, []byte(code), generatedFilePermissions)
	if err != nil {
		return fmt.Errorf("error writing %s: %w", fileName, err)
	}

	fmt.Printf("%s written successfully.\n", fileName)

	return nil
}

// unexported variables.
var errAmbiguousType = errors.New("type name is ambiguous")
