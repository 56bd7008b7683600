// Command csvdoc inspects and reformats CSV files.
//
// Usage:
//
//	csvdoc [flags] fmt
//	csvdoc [flags] validate
//	csvdoc [flags] headers
//	csvdoc [flags] column NAME
//	csvdoc [flags] filter COL=VALUE...
//	csvdoc [flags] count
//
// Input is read from stdin unless -f names a file. Defaults come from
// ./.csvdoc.json (JSON with comments) when present.
package main

import (
	"os"

	"github.com/KimNorgaard/go-csvdoc/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Stdin, os.Stdout, os.Stderr, os.Args[1:]))
}
