package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"aws-cost/core/session"
)

// Prompt reads menu selections and free-text answers from a terminal
// stream. It implements session.Prompter.
type Prompt struct {
	w      *Writer
	reader *bufio.Reader
}

// NewPrompt creates a prompt bound to an input stream (nil means stdin)
func NewPrompt(w *Writer, in io.Reader) *Prompt {
	if in == nil {
		in = os.Stdin
	}
	return &Prompt{w: w, reader: bufio.NewReader(in)}
}

// Select renders a numbered menu with back/done controls and reads one
// choice. Invalid answers re-prompt; the error return is for stream
// failures only.
func (p *Prompt) Select(title string, items []string) (session.Choice, error) {
	p.w.Println("")
	p.w.SubHeader(title)
	for i, item := range items {
		p.w.Println("  %s %s", p.w.color(Cyan, fmt.Sprintf("%2d)", i+1)), item)
	}
	p.w.Println("  %s go back    %s finish", p.w.color(Dim, " b)"), p.w.color(Dim, " d)"))

	for {
		p.w.Print("> ")
		line, err := p.readLine()
		if err != nil {
			return session.Choice{}, err
		}

		switch strings.ToLower(line) {
		case "":
			continue
		case "b", "back":
			return session.Choice{Control: session.ControlBack}, nil
		case "d", "done":
			return session.Choice{Control: session.ControlDone}, nil
		}

		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(items) {
			p.w.Error("Enter a number between 1 and %d, or b/d", len(items))
			continue
		}
		return session.Choice{Index: n - 1}, nil
	}
}

// Input reads one free-text answer
func (p *Prompt) Input(prompt string) (string, error) {
	p.w.Print("%s: ", prompt)
	return p.readLine()
}

// Info reports a completed step
func (p *Prompt) Info(format string, args ...interface{}) {
	p.w.Success(format, args...)
}

// Failure reports a recoverable problem
func (p *Prompt) Failure(format string, args ...interface{}) {
	p.w.Warning(format, args...)
}

func (p *Prompt) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
