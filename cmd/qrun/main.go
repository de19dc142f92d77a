// qrun executes a YAML circuit file against the statevector engine and
// prints the resulting register, without booting the OS.
//
// Circuit files look like:
//
//	name: bell
//	gates:
//	  - {g: h, q: 0}
//	  - {g: cx, c: 0, q: 1}
//	  - {g: measure, q: 0}
package main

import (
	"flag"
	"fmt"
	"os"

	"qubic/qubicos/qsim"
)

func main() {
	var (
		inPath = flag.String("in", "", "Circuit file (.yaml).")
		all    = flag.Bool("all", false, "Print every basis state, not just the populated ones.")
	)
	flag.Parse()

	if *inPath == "" {
		fatalf("usage: qrun -in circuit.yaml [-all]")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		fatalf("read: %v", err)
	}
	c, err := loadCircuit(data)
	if err != nil {
		fatalf("%s: %v", *inPath, err)
	}

	eng := qsim.New()
	lines, err := c.run(eng)
	if err != nil {
		fatalf("%s: %v", *inPath, err)
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	if c.Name != "" {
		fmt.Printf("register after %q:\n", c.Name)
	} else {
		fmt.Println("register:")
	}
	for _, line := range registerLines(eng, *all) {
		fmt.Println(line)
	}
}

func fatalf(format string, args ...any) {
	_, _ = fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(2)
}
