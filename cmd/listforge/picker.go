package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"listforge/internal/capability"
	"listforge/internal/config"
)

// errNoTerminal reports that a folder prompt is needed but stdin is not a
// terminal, so no prompt can be shown.
var errNoTerminal = errors.New("no export folder saved and no terminal to ask for one; pass --dir or run interactively")

// terminalPicker asks for an export folder on the controlling terminal.
type terminalPicker struct {
	in  io.Reader
	out io.Writer
}

func newTerminalPicker(in io.Reader, out io.Writer) *terminalPicker {
	return &terminalPicker{in: in, out: out}
}

func (p *terminalPicker) Pick(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !readerIsTerminal(p.in) {
		return "", errNoTerminal
	}

	fmt.Fprint(p.out, "Export folder (blank to cancel): ")
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read folder path: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", capability.ErrCancelled
	}

	expanded, err := config.ExpandPath(line)
	if err != nil {
		return "", err
	}
	return expanded, nil
}

func readerIsTerminal(reader io.Reader) bool {
	file, ok := reader.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
