package main

import (
	"errors"
	"fmt"
	"os"
)

// Exit codes for different failure modes
const (
	ExitSuccess  = 0 // Command completed
	ExitProblems = 1 // check found problems
	ExitError    = 2 // Configuration or runtime error
)

// ProblemsError indicates that a check ran to completion but found problems
// in the config or catalog.
type ProblemsError struct {
	Count int
}

func (e *ProblemsError) Error() string {
	if e.Count == 1 {
		return "check found 1 problem"
	}
	return fmt.Sprintf("check found %d problems", e.Count)
}

func main() {
	if err := execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)

		var problems *ProblemsError
		if errors.As(err, &problems) {
			os.Exit(ExitProblems)
		}

		// All other errors are configuration/runtime errors
		os.Exit(ExitError)
	}
}
