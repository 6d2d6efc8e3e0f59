package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// stdinPrompter is the real walk.Prompter: it writes the prompt to stderr
// and reads one line from stdin, matching the confirmation convention
// described in spec §4.5 ("Yes means any answer beginning with y or Y").
type stdinPrompter struct{}

func (stdinPrompter) Confirm(prompt string) bool {
	fmt.Fprintf(os.Stderr, "%s ", prompt)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.TrimSpace(scanner.Text())
	return strings.HasPrefix(answer, "y") || strings.HasPrefix(answer, "Y")
}
