// Command rvegen generates representative volume elements with randomly
// placed spherical inclusions and writes them as Gmsh scripts.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
