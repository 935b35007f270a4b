// gen-keywords writes the reserved-word table used by pkg/names.
//
// Usage (from pkg/names, via go generate):
//
//	go run ../../cmd/gen-keywords -o keywords_gen.go
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/dave/jennifer/jen"
)

// groovyKeywords are the reserved words and contextual keywords of Groovy 2.x to 4.x.
var groovyKeywords = []string{
	"abstract", "as", "assert", "boolean", "break", "byte", "case", "catch",
	"char", "class", "const", "continue", "def", "default", "do", "double",
	"else", "enum", "extends", "false", "final", "finally", "float", "for",
	"goto", "if", "implements", "import", "in", "instanceof", "int",
	"interface", "long", "native", "new", "null", "package", "permits",
	"private", "protected", "public", "record", "return", "sealed", "short",
	"static", "strictfp", "super", "switch", "synchronized", "this",
	"threadsafe", "throw", "throws", "trait", "transient", "true", "try",
	"var", "void", "volatile", "while", "yield",
}

// runtimeNames are members of the base class and the names the generated
// class itself defines. User functions must not shadow them.
var runtimeNames = []string{
	"addPeriod", "callType", "changeCase", "chrToInt", "entries", "entry",
	"Entry", "fields", "formatName", "integers", "intToChr", "intToStr",
	"isEmpty", "isMissing", "macro", "main", "newline", "numNames",
	"preamble", "purify", "read", "run", "sort", "String", "strings",
	"substring", "textLength", "textPrefix", "top", "warning", "width",
	"write",
}

func main() {
	out := flag.String("o", "keywords_gen.go", "output file")
	pkg := flag.String("pkg", "names", "package name")
	flag.Parse()

	if err := generate(*out, *pkg); err != nil {
		fmt.Fprintf(os.Stderr, "gen-keywords: %v\n", err)
		os.Exit(1)
	}
}

func generate(out, pkg string) error {
	words := append(append([]string{}, groovyKeywords...), runtimeNames...)
	sort.Strings(words)

	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by gen-keywords. DO NOT EDIT.")
	f.Comment("reserved holds Groovy keywords and the runtime API of generated classes.")
	f.Var().Id("reserved").Op("=").Map(jen.String()).Bool().Values(jen.DictFunc(func(d jen.Dict) {
		for _, w := range words {
			d[jen.Lit(w)] = jen.True()
		}
	}))

	if err := f.Save(out); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	return nil
}
