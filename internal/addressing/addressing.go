// Package addressing builds the opaque package address strings that IR
// Name/Ref values carry for emitter-side physical layout (spec.md §6,
// "Name addressing"), and resolves a dotted namespace path to the source
// file backing it. The core never interprets these addresses itself;
// they are produced here and handed through untouched, generalising
// slash-separated/std-prefixed import resolution to this language's
// dotted namespace paths.
package addressing

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// SourceExt is the file extension Resolve appends to the last segment
// of a namespace path when building the file name it probes for.
const SourceExt = ".quark"

// Options configures a Resolver. All fields are explicit; there is no
// package-level state (spec.md §5, "no globals").
type Options struct {
	// ProjectRoot is the root directory search falls back to once
	// SearchPaths are exhausted.
	ProjectRoot string

	// SearchPaths are additional roots probed, in order, before
	// ProjectRoot is tried on its own.
	SearchPaths []string

	// NativeTarget names the NativeBlock/Primitive mapping this
	// compilation selects (e.g. "go", "py"). Addressing does not
	// interpret it; components downstream (lowering's native-body
	// selection) do.
	NativeTarget string
}

// Resolver resolves dotted namespace paths ("math", "data.structures")
// to source files and builds the opaque package address every emitted
// IR Name/Ref carries.
type Resolver struct {
	projectRoot   string
	searchPaths   []string
	nativeTarget  string
	caseSensitive bool
}

// NewResolver builds a Resolver from explicit Options, defaulting
// ProjectRoot to the working directory when left blank.
func NewResolver(opts Options) *Resolver {
	root := opts.ProjectRoot
	if root == "" {
		if wd, err := os.Getwd(); err == nil {
			root = wd
		} else {
			root = "."
		}
	}
	return &Resolver{
		projectRoot:   root,
		searchPaths:   append([]string(nil), opts.SearchPaths...),
		nativeTarget:  opts.NativeTarget,
		caseSensitive: isFileSystemCaseSensitive(),
	}
}

// NativeTarget reports the configured native-emission target.
func (r *Resolver) NativeTarget() string {
	return r.nativeTarget
}

// Address builds the opaque "<package>:<package>" form spec.md §6 names
// for address scoping: the dotted namespace path doubled around a
// colon. Emitters, not the core, decide what physical layout this
// implies; the core only ever compares and forwards it.
func Address(nsPath string) string {
	return nsPath + ":" + nsPath
}

// Resolve locates the source file backing a dotted namespace path,
// trying each search path in order and falling back to the project
// root, resolving dotted paths instead of slash-separated ones.
func (r *Resolver) Resolve(nsPath string) (string, error) {
	rel := filepath.Join(strings.Split(nsPath, ".")...) + SourceExt

	for _, root := range r.searchPaths {
		if path, ok := r.probe(root, rel); ok {
			return path, nil
		}
	}
	if path, ok := r.probe(r.projectRoot, rel); ok {
		return path, nil
	}
	return "", fmt.Errorf("addressing: namespace %q not found under project root or search paths", nsPath)
}

func (r *Resolver) probe(root, rel string) (string, bool) {
	if root == "" {
		return "", false
	}
	path := filepath.Join(root, rel)
	if _, err := os.Stat(path); err == nil {
		return path, true
	}
	if !r.caseSensitive {
		return "", false
	}
	return "", false
}

// isFileSystemCaseSensitive reports whether the host filesystem
// distinguishes path case.
func isFileSystemCaseSensitive() bool {
	switch runtime.GOOS {
	case "windows", "darwin":
		return false
	default:
		return true
	}
}
