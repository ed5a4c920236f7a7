// Command faqlint prints content warnings for FAQ answer files.
//
// Usage:
//
//	faqlint [-format html|markdown|text] file...
//
// Without -format the format is inferred from each file's extension. The exit
// status is 1 if any file produced a warning and 2 on usage or read errors.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"accordion/internal/content"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("faqlint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "", "content format (html, markdown, text); inferred from extension if empty")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *format != "" {
		if _, ok := content.ParseFormat(*format); !ok {
			fmt.Fprintf(stderr, "unknown format %q\n", *format)
			return 2
		}
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "Usage: faqlint [-format f] file...")
		return 2
	}

	status := 0
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			return 2
		}

		f := *format
		if f == "" {
			f = string(formatFromExt(path))
		}

		for _, w := range content.GetContentWarnings(string(data), f) {
			fmt.Fprintf(stdout, "%s: %s\n", path, w)
			status = 1
		}
	}
	return status
}

func formatFromExt(path string) content.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return content.FormatMarkdown
	case ".txt":
		return content.FormatText
	}
	return content.FormatHTML
}
