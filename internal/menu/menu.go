package menu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-tangra/go-tangra-fingerprint/internal/scanner"
	"github.com/go-tangra/go-tangra-fingerprint/internal/store"
)

// ErrTooManyInvalid is returned when the user exceeds the reprompt limit.
var ErrTooManyInvalid = errors.New("too many invalid choices")

const banner = `
Welcome to the MidTown IT Computer Fingerprint scanner.
Please pick one of the options below to display the corresponding information:
1: Get Computer Name
2: Get IP-address
3: Get MAC-Address
4: Get Processor Model
5: Get Operating System
6: System Time
7: Internet Connection Speed
8: Active Ports
9: Run all functions and put the results into a CSV file
Your choice: `

const againPrompt = "Press Y to bring the menu up again or press anything else to quit: "

// Actions is what the menu options invoke.
type Actions interface {
	Fact(ctx context.Context, f scanner.Fact) (string, error)
	Collect(ctx context.Context) (store.Record, store.Outcome, error)
}

// Options configures a Menu.
type Options struct {
	// MaxReprompts is how many invalid choices in a row are tolerated.
	MaxReprompts int
	// InvalidDelay is the pause before the menu is shown again after an
	// invalid choice.
	InvalidDelay time.Duration
}

// Menu runs the numbered interactive menu.
type Menu struct {
	in      *bufio.Reader
	out     io.Writer
	actions Actions
	opts    Options
}

// New returns a Menu reading choices from in and writing to out.
func New(in io.Reader, out io.Writer, actions Actions, opts Options) *Menu {
	return &Menu{
		in:      bufio.NewReader(in),
		out:     out,
		actions: actions,
		opts:    opts,
	}
}

// Run shows the menu until the user quits, input ends or the context is
// cancelled. A failure to store collected data is returned.
func (m *Menu) Run(ctx context.Context) error {
	invalid := 0
	for {
		choice, ok := m.ask(banner)
		if !ok {
			return nil
		}

		handled, err := m.dispatch(ctx, choice)
		if err != nil {
			return err
		}
		if !handled {
			invalid++
			fmt.Fprintf(m.out, "Invalid choice: %q. Please select a valid option.\n", choice)
			if invalid > m.opts.MaxReprompts {
				return fmt.Errorf("%w: %d in a row", ErrTooManyInvalid, invalid)
			}
			if err := sleep(ctx, m.opts.InvalidDelay); err != nil {
				return err
			}
			continue
		}
		invalid = 0

		again, ok := m.ask(againPrompt)
		if !ok || !strings.EqualFold(again, "y") {
			return nil
		}
	}
}

func (m *Menu) dispatch(ctx context.Context, choice string) (bool, error) {
	switch choice {
	case "9":
		rec, _, err := m.actions.Collect(ctx)
		if err != nil {
			fmt.Fprintf(m.out, "Could not save data: %v\n", err)
			return true, shownError{err}
		}
		fmt.Fprintf(m.out, "Data for %s collected and saved successfully.\n", rec.ComputerName)
		return true, nil
	case "7":
		fmt.Fprintln(m.out, "Testing internet speeds...")
		return true, m.show(ctx, scanner.InternetSpeed, false)
	case "8":
		return true, m.show(ctx, scanner.ActivePorts, false)
	}

	f, ok := factChoices[choice]
	if !ok {
		return false, nil
	}
	return true, m.show(ctx, f, true)
}

var factChoices = map[string]scanner.Fact{
	"1": scanner.ComputerName,
	"2": scanner.IPAddress,
	"3": scanner.MACAddress,
	"4": scanner.ProcessorModel,
	"5": scanner.OperatingSystem,
	"6": scanner.SystemTime,
}

func (m *Menu) show(ctx context.Context, f scanner.Fact, labelled bool) error {
	v, err := m.actions.Fact(ctx, f)
	if err != nil {
		return err
	}
	if labelled {
		fmt.Fprintf(m.out, "%s: %s\n", f.Label(), v)
	} else {
		fmt.Fprintln(m.out, v)
	}
	return nil
}

// ask prints prompt and reads one trimmed line. ok is false once input ends.
func (m *Menu) ask(prompt string) (string, bool) {
	fmt.Fprint(m.out, prompt)
	line, err := m.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(m.out)
		return "", false
	}
	return strings.TrimSpace(line), true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// shownError marks an error the menu has already printed.
type shownError struct{ err error }

func (e shownError) Error() string { return e.err.Error() }
func (e shownError) Unwrap() error { return e.err }

// Shown reports whether err was already printed to the menu output.
func Shown(err error) bool {
	var s shownError
	return errors.As(err, &s)
}
