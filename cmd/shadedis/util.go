package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var red = color.New(color.FgRed).SprintFunc()

func fatal(msg interface{}) {
	var s string
	switch msg := msg.(type) {
	case string:
		s = msg
	case error:
		s = msg.Error()
	default:
		s = fmt.Sprintf("%v", msg)
	}
	fmt.Fprintf(os.Stderr, "%s\n", red(s))
	os.Exit(1)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
