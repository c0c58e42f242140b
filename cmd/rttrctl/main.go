// Command rttrctl inspects the reflection registry: it lists and describes
// registered types, decodes raw type signatures and exercises the
// WebAssembly binding.
package main

import (
	"fmt"
	"os"

	_ "github.com/wippyai/rttr/examples/geometry"
	"github.com/wippyai/rttr/registry"
)

func main() {
	if err := newRootCmd(registry.Default()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
