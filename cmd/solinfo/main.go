// Command solinfo prints a summary of a solution container's contents.
package main

import (
	"fmt"
	"os"

	"github.com/radioastro/solparm/solparm"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: solinfo <file.spc>")
		os.Exit(1)
	}

	p, err := solparm.Open(os.Args[1])
	if err != nil {
		fmt.Printf("ERROR: failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	summary, err := p.Describe()
	if err != nil {
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	fmt.Print(summary)
}
