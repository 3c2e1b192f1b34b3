// nexus drives the multi-format processing pipelines from the command line.
//
// Usage:
//
//	nexus demo
//	nexus run --format=json '{"sensor": "temp", "value": 23.5, "unit": "C"}'
//	nexus run --format=stream --backup --stats 21.9,22.1,22.5
//	nexus batch --format=csv inputs.txt
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
