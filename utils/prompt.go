package utils

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"orderwalk/internal/types"
)

// PromptConfirmer asks on out and reads a y/yes answer from in. Anything else,
// including end of input, is a no.
func PromptConfirmer(in io.Reader, out io.Writer) types.Confirmer {
	reader := bufio.NewReader(in)
	return func(message string) bool {
		fmt.Fprintf(out, "%s [y/N]: ", message)
		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			fmt.Fprintln(out)
			return false
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return true
		default:
			return false
		}
	}
}

// AlwaysConfirm accepts every question.
func AlwaysConfirm(string) bool { return true }

// NeverConfirm declines every question.
func NeverConfirm(string) bool { return false }
