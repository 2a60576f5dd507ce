//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every executable into ./bin
func Build() error {
	mg.Deps(BuildSimulation, BuildCompressionScan)
	fmt.Println("Compilation finished")
	return nil
}

func BuildSimulation() error {
	fmt.Println("Building tpcsim executable...")
	return goBuild("./bin/tpcsim", "./tpcsim")
}

func BuildCompressionScan() error {
	fmt.Println("Building compressionScan executable...")
	return goBuild("./bin/compressionScan", "./compressionScan")
}

// Test runs the unit tests. The HDF5 packages need the same cgo flags as
// the build.
func Test() error {
	cmd := cgoCommand("go", "test", "./...")
	return cmd.Run()
}

func goBuild(output string, pkg string) error {
	cmd := cgoCommand("go", "build", "-o", output, pkg)
	return cmd.Run()
}

func cgoCommand(name string, args ...string) *exec.Cmd {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd
}
