package conflict

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Prompter serves conflict requests and yes/no questions on a terminal.
// Input is read by a single goroutine so answers are never split between
// concurrent questions.
type Prompter struct {
	out io.Writer
	mu  sync.Mutex

	lines chan string
}

func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	p := &Prompter{
		out:   out,
		lines: make(chan string),
	}
	go p.readLines(in)
	return p
}

func (p *Prompter) readLines(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		p.lines <- scanner.Text()
	}
	close(p.lines)
}

// Serve answers requests until ctx is done or requests is closed.
func (p *Prompter) Serve(ctx context.Context, requests <-chan Request) {
	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			if res, answered := p.ask(ctx, req); answered {
				req.Reply(res)
			}
		}
	}
}

func (p *Prompter) ask(ctx context.Context, req Request) (Resolution, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	wait := time.Until(req.Deadline)
	if wait <= 0 {
		return 0, false
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()

	fmt.Fprintf(p.out, "Output file already exists: %s\n", req.Path)
	for {
		secs := int(time.Until(req.Deadline).Round(time.Second) / time.Second)
		fmt.Fprintf(p.out, "[o]verwrite / [r]ename / [s]kip (renaming in %ds): ", secs)

		select {
		case <-ctx.Done():
			return 0, false
		case <-timer.C:
			fmt.Fprintln(p.out, "\nno answer, renaming")
			return 0, false
		case line, ok := <-p.lines:
			if !ok {
				fmt.Fprintln(p.out)
				return 0, false
			}
			res, err := ParseResolution(line)
			if err != nil {
				fmt.Fprintf(p.out, "%v\n", err)
				continue
			}
			return res, true
		}
	}
}

// Confirm asks a yes/no question. Anything but y/yes, or closed input, is no.
func (p *Prompter) Confirm(ctx context.Context, question string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.out, "%s [y/N]: ", question)
	select {
	case <-ctx.Done():
		return false
	case line, ok := <-p.lines:
		if !ok {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}
