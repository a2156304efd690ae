// Command quarkc drives the compiler core over a JSON-encoded AST
// fixture (the external parser's output format — parsing itself is out
// of spec.md §1's scope) and prints either the lowered IR or the
// collected diagnostics, colourised the same way PASS/FAIL is
// colourised in a REPL or test runner.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/quarkc/compiler/internal/astjson"
	"github.com/quarkc/compiler/internal/compiler"
	"github.com/quarkc/compiler/internal/ir"
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		dump         = flag.String("dump", "", "print a pipeline artifact after compiling (\"ir\")")
		manifestPath = flag.String("manifest", "", "path to a quark.yaml project manifest")
		searchPath   = flag.String("search", "", "additional namespace search path")
		nativeTarget = flag.String("target", "go", "native emission target required of every Primitive")
	)
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "%s: missing fixture argument\n", red("error"))
		fmt.Println("Usage: quarkc [-dump ir] [-manifest quark.yaml] <fixture.json>")
		os.Exit(1)
	}

	opts := compiler.Options{NativeTargets: []string{*nativeTarget}}
	if *searchPath != "" {
		opts.SearchPaths = append(opts.SearchPaths, *searchPath)
	}
	if *manifestPath != "" {
		manifest, err := compiler.LoadManifest(*manifestPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			os.Exit(1)
		}
		opts = opts.Merge(manifest)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	ns, err := astjson.Decode(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	c := compiler.New(opts)
	report, err := c.Compile(ns)
	if err != nil {
		if report != nil {
			printDiagnostics(report)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		fmt.Fprintf(os.Stderr, "%s: compilation failed\n", red("FAIL"))
		os.Exit(1)
	}

	fmt.Printf("%s run %s: %s compiled cleanly\n", cyan("quarkc"), report.RunID, green("PASS"))
	if *dump == "ir" {
		dumpIR(report.Package)
	}
}

func printDiagnostics(report *compiler.Report) {
	if report == nil {
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(os.Stderr, "%s %s\n", yellow(string(d.Code)), d.Message)
	}
}

func dumpIR(pkg *ir.Package) {
	fmt.Println(bold("-- lowered IR --"))
	fmt.Println(pkg.String())
	for _, def := range pkg.Defs {
		fmt.Printf("  %s\n", def.String())
	}
}
