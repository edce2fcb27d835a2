// changeling/descgen generates catalog registration code for types parsed
// from Go source. To use it, install it with
// `go install github.com/faekit/changeling/descgen@latest`
// and add a `//go:generate descgen <dir> <TypeName>` comment in the package
// that needs the descriptor. By default the generated file is named
// <type>_descriptor.go and the registration function
// Register<TypeName>Descriptor; pass `--name <func>` to choose the function
// name, in which case the file name follows it. The file is written to the
// package containing the `//go:generate` comment.
package main

import (
	"fmt"
	"os"

	"github.com/faekit/changeling/descgen/run"
	"github.com/faekit/changeling/source"
)

// main is the entry point of the descgen tool.
func main() {
	if os.Args == nil {
		return
	}

	err := run.Run(os.Args, os.Getenv, &realFileSystem{}, openStore)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openStore adapts source.NewStore to the run.StoreOpener contract.
func openStore(dir string) (run.Store, error) {
	store, err := source.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", dir, err)
	}

	return store, nil
}

// realFileSystem implements FileSystem using the os package.
type realFileSystem struct{}

// WriteFile writes data to the file named by name.
func (fs *realFileSystem) WriteFile(name string, data []byte, perm os.FileMode) error {
	err := os.WriteFile(name, data, perm)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", name, err)
	}

	return nil
}
