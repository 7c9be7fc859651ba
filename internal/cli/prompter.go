package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ErrInputCancelled is returned when input is canceled by context.
var ErrInputCancelled = errors.New("input canceled")

// Prompter asks the user questions on a terminal. Reads honor context
// cancellation so Ctrl-C is not stuck behind a blocking read.
type Prompter struct {
	reader      *bufio.Reader
	writer      io.Writer
	readingLock sync.Mutex
}

// NewPrompter creates a prompter. Nil arguments mean stdin and stdout.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}
	return &Prompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// ReadLine reads one trimmed line.
func (p *Prompter) ReadLine(ctx context.Context) (string, error) {
	type result struct {
		err   error
		value string
	}
	resultCh := make(chan result, 1)

	go func() {
		p.readingLock.Lock()
		defer p.readingLock.Unlock()

		value, err := p.reader.ReadString('\n')
		resultCh <- result{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		// The read goroutine finishes on its own once input arrives.
		return "", ErrInputCancelled
	case res := <-resultCh:
		if res.err != nil && !(errors.Is(res.err, io.EOF) && res.value != "") {
			return "", res.err
		}
		return strings.TrimSpace(res.value), nil
	}
}

// Confirm asks a yes/no question. Anything but y or yes is a no.
func (p *Prompter) Confirm(ctx context.Context, question string) (bool, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" [y/N]")); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}
	answer, err := p.ReadLine(ctx)
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
