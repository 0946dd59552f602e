package main

import (
	"os"
	"strings"

	"weighttracker/internal/cli"
)

type exitCoder interface {
	ExitCode() int
}

func main() {
	if err := cli.Execute(os.Args[1:]); err != nil {
		// Print a short, single-line error to stderr on failures.
		msg := strings.Join(strings.Fields(err.Error()), " ")
		if msg == "" {
			msg = "error"
		}
		_, _ = os.Stderr.WriteString("weighttracker: " + msg + "\n")
		code := 1
		if ec, ok := err.(exitCoder); ok {
			if c := ec.ExitCode(); c != 0 {
				code = c
			}
		}
		os.Exit(code)
	}
}
