// Package cli holds the interactive pieces of the command layer: the
// deletion confirmation prompt and the fuzzy target picker.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks y/N questions on the terminal. It holds one buffered
// reader across questions so a prune pass can confirm snapshot by
// snapshot without losing input.
type Prompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter creates a Prompter over the given streams. Tests inject a
// strings.Reader and a bytes.Buffer.
func NewPrompter(r io.Reader, w io.Writer) *Prompter {
	return &Prompter{reader: bufio.NewReader(r), writer: w}
}

// Confirm asks the question and returns true only for an explicit "y" or
// "yes" (case-insensitive). Empty input, anything else and EOF all decline.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.writer, "%s [y/N]: ", question)

	response, err := p.reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
