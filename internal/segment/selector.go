package segment

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Choice is the action selected after a boundary set has been computed.
type Choice int

// Selector choices.
const (
	ChoiceRender Choice = iota + 1 // render segments to audio files
	ChoiceExport                   // export boundaries as a text file
	ChoiceAbort                    // exit without writing any output
)

// String returns the choice name for logging.
func (c Choice) String() string {
	switch c {
	case ChoiceRender:
		return "render"
	case ChoiceExport:
		return "export"
	case ChoiceAbort:
		return "abort"
	}
	return "unknown"
}

// DecisionProvider supplies the render/export/abort decision made after
// boundary detection. The terminal prompt implements it; tests inject
// fakes so the routing logic runs without console input.
type DecisionProvider interface {
	Choose() (Choice, error)
}

// PromptSelector is the interactive DecisionProvider. It prints the three
// choices once and reads a single line; there is no reselection loop.
type PromptSelector struct {
	in  io.Reader
	out io.Writer
}

// NewPromptSelector creates a selector reading from in and prompting on out.
func NewPromptSelector(in io.Reader, out io.Writer) *PromptSelector {
	return &PromptSelector{in: in, out: out}
}

// Choose presents the prompt and maps the reply to a Choice. Unrecognized
// input is an error, not a retry.
func (p *PromptSelector) Choose() (Choice, error) {
	fmt.Fprintln(p.out, "Choose an action:")
	fmt.Fprintln(p.out, "1) Render segments")
	fmt.Fprintln(p.out, "2) Export segments as text file")
	fmt.Fprintln(p.out, "3) Exit")

	reader := bufio.NewReader(p.in)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("failed to read selection: %w", err)
	}

	switch strings.TrimSpace(line) {
	case "1":
		return ChoiceRender, nil
	case "2":
		return ChoiceExport, nil
	case "3":
		return ChoiceAbort, nil
	}
	return 0, fmt.Errorf("invalid selection '%s': expected 1, 2 or 3", strings.TrimSpace(line))
}
