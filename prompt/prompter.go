package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/pkg/errors"
)

// ErrNoInput is returned when input ends before a valid answer was given
var ErrNoInput = errors.New("input closed before a valid answer")

// Prompter asks questions on out and reads answers line by line from in
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	ctx     context.Context
	// Attempts counts rejected answers since creation
	Attempts int
}

// New creates a Prompter
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
	}
}

// WithContext makes pending questions return ctx.Err() once ctx is done
func (p *Prompter) WithContext(ctx context.Context) *Prompter {
	p.ctx = ctx
	return p
}

type answer struct {
	line string
	err  error
}

func (p *Prompter) ask(message string) (string, error) {
	if p.ctx == nil {
		fmt.Fprint(p.out, message)
		return p.read()
	}
	if err := p.ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, message)

	// the reader goroutine stays blocked after cancellation; the prompter is done by then
	ch := make(chan answer, 1)
	go func() {
		line, err := p.read()
		ch <- answer{line: line, err: err}
	}()
	select {
	case <-p.ctx.Done():
		return "", p.ctx.Err()
	case a := <-ch:
		return a.line, a.err
	}
}

func (p *Prompter) read() (string, error) {
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", errors.Wrap(err, "failed to read input")
		}
		return "", ErrNoInput
	}
	return p.scanner.Text(), nil
}

func (p *Prompter) reject(err error) {
	p.Attempts++
	fmt.Fprintln(p.out, color.YellowString("%v", err))
}

// Int asks until the answer parses as an integer accepted by every validator
func (p *Prompter) Int(message string, validators ...IntValidator) (int, error) {
	for {
		line, err := p.ask(message)
		if err != nil {
			return 0, err
		}
		v, err := ParseInt(line)
		if err == nil {
			err = validate(v, validators)
		}
		if err != nil {
			p.reject(err)
			continue
		}
		return v, nil
	}
}

func validate(v int, validators []IntValidator) error {
	for _, check := range validators {
		if err := check(v); err != nil {
			return err
		}
	}
	return nil
}

// Float asks until the answer parses as a number
func (p *Prompter) Float(message string) (float64, error) {
	for {
		line, err := p.ask(message)
		if err != nil {
			return 0, err
		}
		v, err := ParseFloat(line)
		if err != nil {
			p.reject(err)
			continue
		}
		return v, nil
	}
}

// Choice asks until the answer is one of options. The options are listed after the message.
func (p *Prompter) Choice(message string, options []string) (string, error) {
	full := fmt.Sprintf("%s (%s): ", message, strings.Join(options, ", "))
	for {
		line, err := p.ask(full)
		if err != nil {
			return "", err
		}
		v, err := ParseChoice(line, options)
		if err != nil {
			p.reject(err)
			continue
		}
		return v, nil
	}
}
