// Command gty is a short alias for gantry. With no subcommand it runs
// "gantry report", so "gty --project tower --gantt" prints the dashboard.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// subcommands are passed through unchanged.
var subcommands = map[string]bool{
	"report":     true,
	"modules":    true,
	"trend":      true,
	"serve":      true,
	"migrate":    true,
	"help":       true,
	"completion": true,
}

// gantryArgs builds the argv for gantry, inserting "report" when the first
// argument is not a subcommand or a help flag.
func gantryArgs(args []string) []string {
	out := []string{"gantry"}
	if len(args) == 0 {
		return append(out, "report")
	}
	first := args[0]
	switch {
	case subcommands[first], first == "-h", first == "--help":
	case strings.HasPrefix(first, "-"):
		out = append(out, "report")
	}
	return append(out, args...)
}

func main() {
	bin, err := exec.LookPath("gantry")
	if err != nil {
		fmt.Fprintln(os.Stderr, "gty: gantry not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, gantryArgs(os.Args[1:]), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "gty: %v\n", err)
		os.Exit(1)
	}
}
