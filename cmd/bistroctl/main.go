package main

import (
	"fmt"
	"os"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := newApp(os.Stdout, connect).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bistroctl:", err)
		os.Exit(1)
	}
}
