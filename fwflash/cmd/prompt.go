// Copyright 2025 Blues Inc.  All rights reserved.
// Use of this source code is governed by licenses granted by the
// copyright holder including that found in the LICENSE file.

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// prompter asks the user a question
type prompter interface {
	Prompt(text string) (string, error)
	Close() error
}

// newPrompter is replaced in tests
var newPrompter = func() prompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return line
}

// confirm asks a yes or no question, defaulting to no.  Aborting the prompt
// with CTRL-C or CTRL-D is a no.
func confirm(question string) (bool, error) {
	line := newPrompter()
	defer line.Close()

	for {
		input, err := line.Prompt(question + " [y/N] ")
		if err == liner.ErrPromptAborted || err == io.EOF {
			fmt.Println()
			return false, nil
		} else if err != nil {
			return false, fmt.Errorf("error reading line: %w", err)
		}

		switch strings.Trim(strings.ToLower(input), " \t") {
		case "y", "yes":
			return true, nil
		case "", "n", "no":
			return false, nil
		}
		fmt.Printf("please answer yes or no\n")
	}
}
