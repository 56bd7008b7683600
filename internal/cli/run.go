// Package cli implements the csvdoc command.
package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	csvdoc "github.com/KimNorgaard/go-csvdoc"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

var errUsage = errors.New("usage")

const usage = `Usage: csvdoc [flags] <command> [args]

Commands:
  fmt                    re-serialize the input
  validate               check that the input parses and is rectangular
  headers                print the column names, one per line
  column NAME            print the values of column NAME, one per line
  filter COL=VALUE...    keep rows where every COL equals VALUE
  count                  print the number of data rows

Flags:
`

type globalFlags struct {
	flags        *flag.FlagSet
	delimiter    string
	outDelimiter string
	noHeader     bool
	lf           bool
	file         string
	output       string
	configPath   string
	workDir      string
}

func newGlobalFlags() *globalFlags {
	g := &globalFlags{flags: flag.NewFlagSet("csvdoc", flag.ContinueOnError)}
	fs := g.flags
	fs.SetInterspersed(false)
	fs.StringVarP(&g.delimiter, "delimiter", "d", "", "field delimiter (default \",\"; \\t means tab)")
	fs.StringVar(&g.outDelimiter, "out-delimiter", "", "delimiter for written output (default: input delimiter)")
	fs.BoolVar(&g.noHeader, "no-header", false, "treat the first record as data")
	fs.BoolVar(&g.lf, "lf", false, "terminate written records with LF instead of CRLF")
	fs.StringVarP(&g.file, "file", "f", "", "input file (default: stdin)")
	fs.StringVarP(&g.output, "output", "o", "", "write output to this file atomically (default: stdout)")
	fs.StringVarP(&g.configPath, "config", "c", "", "config file (default: ./"+ConfigFileName+" if present)")
	fs.StringVarP(&g.workDir, "cwd", "C", "", "run as if started in this directory")
	return g
}

func (g *globalFlags) overrides() Config {
	var cfg Config
	if g.flags.Changed("delimiter") {
		cfg.Delimiter = g.delimiter
	}
	if g.noHeader {
		header := false
		cfg.Header = &header
	}
	if g.lf {
		crlf := false
		cfg.CRLF = &crlf
	}
	return cfg
}

func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprint(w, usage)
	var buf strings.Builder
	fs.SetOutput(&buf)
	fs.PrintDefaults()
	fmt.Fprint(w, buf.String())
}

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out, errOut io.Writer, args []string) int {
	g := newGlobalFlags()
	g.flags.SetOutput(io.Discard)
	if err := g.flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(out, g.flags)
			return ExitOK
		}
		fmt.Fprintln(errOut, "error:", err)
		printUsage(errOut, g.flags)
		return ExitUsage
	}

	rest := g.flags.Args()
	if len(rest) == 0 {
		printUsage(errOut, g.flags)
		return ExitUsage
	}

	workDir := g.workDir
	if workDir == "" {
		var err error
		if workDir, err = os.Getwd(); err != nil {
			fmt.Fprintln(errOut, "error: cannot get working directory:", err)
			return ExitError
		}
	}
	cfg, _, err := LoadConfig(workDir, g.configPath, g.overrides())
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return ExitError
	}

	s := &session{cfg: cfg, flags: g, in: in, workDir: workDir}
	var buf bytes.Buffer
	s.out = out
	if g.output != "" {
		s.out = &buf
	}

	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "fmt":
		err = s.cmdFmt(cmdArgs)
	case "validate":
		err = s.cmdValidate(cmdArgs)
	case "headers":
		err = s.cmdHeaders(cmdArgs)
	case "column":
		err = s.cmdColumn(cmdArgs)
	case "filter":
		err = s.cmdFilter(cmdArgs)
	case "count":
		err = s.cmdCount(cmdArgs)
	default:
		err = fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
	if errors.Is(err, errUsage) {
		fmt.Fprintln(errOut, "error:", strings.TrimPrefix(err.Error(), "usage: "))
		printUsage(errOut, g.flags)
		return ExitUsage
	}
	if err != nil {
		fmt.Fprintln(errOut, "error:", err)
		return ExitError
	}

	if g.output != "" {
		if err := csvdoc.WriteFileAtomic(s.path(g.output), buf.Bytes()); err != nil {
			fmt.Fprintln(errOut, "error:", err)
			return ExitError
		}
	}
	return ExitOK
}
