// Command corewasm is a minimal CLI over the corewasm package: compile a
// Wasm binary ahead of time, or compile-instantiate-and-invoke one
// exported function directly from the shell.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/wazeroc/corewasm/corewasm"
	"github.com/wazeroc/corewasm/internal/version"
)

func main() {
	os.Exit(doMain(os.Stdout, os.Stderr))
}

// doMain is separated out for the purpose of unit testing.
func doMain(stdOut, stdErr io.Writer) int {
	flag.CommandLine.SetOutput(stdErr)

	var help bool
	flag.BoolVar(&help, "h", false, "Prints usage.")
	flag.Parse()

	if help || flag.NArg() == 0 {
		printUsage(stdErr)
		return 0
	}

	subCmd := flag.Arg(0)
	switch subCmd {
	case "compile":
		return doCompile(flag.Args()[1:], stdErr)
	case "run":
		return doRun(flag.Args()[1:], stdOut, stdErr)
	case "version":
		fmt.Fprintln(stdOut, version.GetVersion())
		return 0
	default:
		fmt.Fprintln(stdErr, "invalid command")
		printUsage(stdErr)
		return 1
	}
}

func doCompile(args []string, stdErr io.Writer) int {
	flags := flag.NewFlagSet("compile", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	_ = flags.Parse(args)

	if flags.NArg() < 1 {
		fmt.Fprintln(stdErr, "missing path to wasm file")
		printCompileUsage(stdErr)
		return 1
	}

	wasmBytes, err := os.ReadFile(flags.Arg(0))
	if err != nil {
		fmt.Fprintf(stdErr, "error reading wasm binary: %v\n", err)
		return 1
	}

	ctx := context.Background()
	rt := corewasm.NewRuntime(ctx)
	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		fmt.Fprintf(stdErr, "error compiling wasm binary: %v\n", err)
		return 1
	}

	for _, name := range compiled.ImportedFunctions() {
		fmt.Fprintf(stdErr, "imports: %s.%s\n", name.Module, name.Name)
	}
	return 0
}

func doRun(args []string, stdOut, stdErr io.Writer) int {
	flags := flag.NewFlagSet("run", flag.ContinueOnError)
	flags.SetOutput(stdErr)
	_ = flags.Parse(args)

	if flags.NArg() < 2 {
		fmt.Fprintln(stdErr, "missing path to wasm file and/or exported function name")
		printRunUsage(stdErr)
		return 1
	}

	wasmPath, funcName := flags.Arg(0), flags.Arg(1)
	callArgs, err := parseArgs(flags.Args()[2:])
	if err != nil {
		fmt.Fprintf(stdErr, "invalid argument: %v\n", err)
		return 1
	}

	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		fmt.Fprintf(stdErr, "error reading wasm binary: %v\n", err)
		return 1
	}

	ctx := context.Background()
	rt := corewasm.NewRuntime(ctx)

	compiled, err := rt.CompileModule(ctx, wasmBytes)
	if err != nil {
		fmt.Fprintf(stdErr, "error compiling wasm binary: %v\n", err)
		return 1
	}

	if imported := compiled.ImportedFunctions(); len(imported) > 0 {
		fmt.Fprintln(stdErr, "error: this binary declares host function imports, "+
			"which the corewasm CLI does not resolve; use corewasm as a library instead")
		return 1
	}

	instance, err := rt.Instantiate(ctx, compiled, corewasm.NewImports())
	if err != nil {
		fmt.Fprintf(stdErr, "error instantiating wasm binary: %v\n", err)
		return 1
	}

	results, err := instance.Invoke(ctx, funcName, callArgs...)
	if err != nil {
		fmt.Fprintf(stdErr, "error invoking %q: %v\n", funcName, err)
		return 1
	}

	for _, r := range results {
		fmt.Fprintln(stdOut, r)
	}
	return 0
}

// parseArgs interprets each CLI argument as a uint64, matching Invoke's
// raw-stack-value calling convention: wasm value encoding beyond that
// (floats, signed wraparound) is left to library callers.
func parseArgs(args []string) ([]uint64, error) {
	out := make([]uint64, len(args))
	for i, a := range args {
		v, err := strconv.ParseUint(a, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", a, err)
		}
		out[i] = v
	}
	return out, nil
}

func printUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "corewasm CLI")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Usage:\n  corewasm <command>")
	fmt.Fprintln(stdErr)
	fmt.Fprintln(stdErr, "Commands:")
	fmt.Fprintln(stdErr, "  compile\tCompiles a WebAssembly binary and reports its imports")
	fmt.Fprintln(stdErr, "  run\t\tInvokes one exported function from a WebAssembly binary")
	fmt.Fprintln(stdErr, "  version\tDisplays the version of the corewasm module")
}

func printCompileUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "Usage:\n  corewasm compile <path to wasm file>")
}

func printRunUsage(stdErr io.Writer) {
	fmt.Fprintln(stdErr, "Usage:\n  corewasm run <path to wasm file> <exported func> [args...]")
}
