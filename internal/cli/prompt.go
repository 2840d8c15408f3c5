package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter reads answers to interactive questions.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

// String asks for a value, returning def on an empty answer.
func (p *prompter) String(label, def string) string {
	if def != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	input, _ := p.in.ReadString('\n')
	input = strings.TrimSpace(input)
	if input == "" {
		return def
	}
	return input
}

// Int asks for a positive integer, returning def on an empty or invalid answer.
func (p *prompter) Int(label string, def int) int {
	answer := p.String(label, strconv.Itoa(def))
	if v, err := strconv.Atoi(answer); err == nil && v > 0 {
		return v
	}
	return def
}

// YesNo asks a yes/no question defaulting to no.
func (p *prompter) YesNo(label string) bool {
	answer := strings.ToLower(p.String(label+" [y/N]", ""))
	return answer == "y" || answer == "yes"
}
