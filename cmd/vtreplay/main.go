// Copyright 2022~2024 wangqi. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command vtreplay reads an action stream captured by `vtdump -record`
// and prints it back as a trace, one Dispatch Target call per line.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ericwq/vtparse/internal/record"
)

const (
	commandName = "vtreplay"
	usage       = `Usage:
  ` + commandName + ` FILE
Options:
  -h, --help   print this message
`
)

func main() {
	fs := flag.NewFlagSet(commandName, flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	fs.Parse(os.Args[1:])

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(2)
	}

	if err := run(fs.Arg(0), os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, commandName+":", err)
		os.Exit(1)
	}
}

func run(path string, out io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(out)
	defer w.Flush()

	r := record.NewReader(f)
	for {
		a, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(w, formatAction(a))
	}
}

func formatAction(a record.Action) string {
	s := a.Name
	if len(a.Ints) > 0 {
		s += fmt.Sprintf(" %v", a.Ints)
	}
	if a.String != "" {
		s += fmt.Sprintf(" %q", a.String)
	}
	return s
}
