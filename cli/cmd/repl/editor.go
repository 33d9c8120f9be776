package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/twine/lang"
	"github.com/ardnew/twine/log"
)

const defaultEditor = "vi"

// editDataCommand implements [tea.ExecCommand] for the data
// edit-decode-retry loop. It writes the current data context as YAML to a
// temp file, opens the user's editor, and decodes the result. On a decode
// error the user is prompted to re-edit; declining exits the program.
type editDataCommand struct {
	data    lang.Value
	ctxFunc func() context.Context
	newData *lang.Value
	logger  log.Logger
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editDataCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editDataCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editDataCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-decode-retry loop. If the user declines to re-edit,
// it returns [ErrEditDeclined]. Clearing the file cancels the edit.
func (c *editDataCommand) Run() error {
	ctx := c.ctxFunc()

	content, err := marshalData(c.data)
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(os.TempDir(), "twine-data-*.yaml")
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	for {
		if err := os.WriteFile(tmpPath, content, 0o600); err != nil {
			return err
		}

		data, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		v, decodeErr := lang.DecodeData(bytes.NewReader(data))
		c.logger.TraceContext(ctx, "editor decode attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", decodeErr == nil),
		)

		if decodeErr == nil {
			c.newData = &v

			return nil
		}

		fmt.Fprintf(c.stderr, "\nData error: %s\n", decodeErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		content = data
	}
}

// marshalData formats v as block-style YAML. A null value yields an empty
// document.
func marshalData(v lang.Value) ([]byte, error) {
	if v.IsNull() {
		return nil, nil
	}

	return yaml.MarshalWithOptions(v.Native(), yaml.Indent(2))
}

// runEditor launches the user's editor on the given file path and returns
// the edited content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) ([]byte, error) {
	editor := os.Getenv("VISUAL")
	if editor == "" {
		editor = os.Getenv("EDITOR")
	}

	if editor == "" {
		editor = defaultEditor
	}

	args := append(strings.Fields(editor), path)

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	return os.ReadFile(path)
}
