package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// PassphraseReader prompts with label and returns the entered line.
type PassphraseReader func(label string) (string, error)

// TerminalPassphraseReader reads from stdin with echo disabled. When stdin is
// not a terminal the line is read as is, so the command can be scripted.
func TerminalPassphraseReader(stdin *os.File, prompt io.Writer) PassphraseReader {
	return func(label string) (string, error) {
		fmt.Fprint(prompt, label)
		value, err := readPassphraseNoEcho(stdin)
		fmt.Fprintln(prompt)
		if err == nil {
			return string(value), nil
		}
		if stdin == nil {
			return "", err
		}
		return readPlainLine(stdin)
	}
}

func readPlainLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
