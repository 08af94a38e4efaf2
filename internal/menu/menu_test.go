package menu

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-tangra/go-tangra-fingerprint/internal/scanner"
	"github.com/go-tangra/go-tangra-fingerprint/internal/store"
)

type stubActions struct {
	facts      []scanner.Fact
	collected  int
	collectErr error
}

func (s *stubActions) Fact(_ context.Context, f scanner.Fact) (string, error) {
	s.facts = append(s.facts, f)
	switch f {
	case scanner.InternetSpeed:
		return "Download speed: 1.00 Mbps, Upload speed: 1.00 Mbps", nil
	case scanner.ActivePorts:
		return "Active ports: 22", nil
	default:
		return "value-" + f.Label(), nil
	}
}

func (s *stubActions) Collect(context.Context) (store.Record, store.Outcome, error) {
	s.collected++
	if s.collectErr != nil {
		return store.Record{}, 0, s.collectErr
	}
	return store.Record{ComputerName: "PC-A"}, store.Inserted, nil
}

func run(t *testing.T, input string, a *stubActions, opts Options) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := New(strings.NewReader(input), &out, a, opts).Run(context.Background())
	return out.String(), err
}

func TestRunSingleFactThenQuit(t *testing.T) {
	a := &stubActions{}
	out, err := run(t, "1\nn\n", a, Options{MaxReprompts: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Computer Name: value-Computer Name\n") {
		t.Fatalf("missing fact output:\n%s", out)
	}
	if strings.Count(out, "Your choice: ") != 1 {
		t.Fatalf("menu shown more than once:\n%s", out)
	}
}

func TestRunRepeatsOnY(t *testing.T) {
	a := &stubActions{}
	_, err := run(t, "5\nY\n8\ny\n7\nq\n", a, Options{MaxReprompts: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	want := []scanner.Fact{scanner.OperatingSystem, scanner.ActivePorts, scanner.InternetSpeed}
	if len(a.facts) != len(want) {
		t.Fatalf("facts = %v, want %v", a.facts, want)
	}
	for i := range want {
		if a.facts[i] != want[i] {
			t.Fatalf("facts = %v, want %v", a.facts, want)
		}
	}
}

func TestRunSpeedAndPortsOutput(t *testing.T) {
	out, err := run(t, "7\ny\n8\n\n", &stubActions{}, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, "Testing internet speeds...\nDownload speed: 1.00 Mbps, Upload speed: 1.00 Mbps\n") {
		t.Fatalf("missing speed output:\n%s", out)
	}
	if !strings.Contains(out, "Active ports: 22\n") {
		t.Fatalf("missing ports output:\n%s", out)
	}
}

func TestRunCollect(t *testing.T) {
	a := &stubActions{}
	out, err := run(t, "9\nn\n", a, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if a.collected != 1 {
		t.Fatalf("collected %d times, want 1", a.collected)
	}
	if !strings.Contains(out, "Data for PC-A collected and saved successfully.") {
		t.Fatalf("missing confirmation:\n%s", out)
	}
}

func TestRunCollectFailureIsReturned(t *testing.T) {
	a := &stubActions{collectErr: store.ErrMalformed}
	out, err := run(t, "9\n", a, Options{})
	if !errors.Is(err, store.ErrMalformed) {
		t.Fatalf("Run error = %v, want ErrMalformed", err)
	}
	if !strings.Contains(out, "Could not save data") {
		t.Fatalf("missing failure message:\n%s", out)
	}
	if !Shown(err) {
		t.Fatalf("Shown(%v) = false, want true", err)
	}
	if Shown(store.ErrMalformed) {
		t.Fatal("Shown reports an error the menu never printed")
	}
}

func TestRunInvalidChoiceReprompts(t *testing.T) {
	a := &stubActions{}
	out, err := run(t, "x\n10\n2\nn\n", a, Options{MaxReprompts: 2})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out, `Invalid choice: "x". Please select a valid option.`) {
		t.Fatalf("missing invalid message:\n%s", out)
	}
	if strings.Count(out, "Your choice: ") != 3 {
		t.Fatalf("expected 3 menu prompts:\n%s", out)
	}
	if strings.Count(out, againPrompt) != 1 {
		t.Fatalf("expected one repeat prompt:\n%s", out)
	}
	if len(a.facts) != 1 || a.facts[0] != scanner.IPAddress {
		t.Fatalf("facts = %v", a.facts)
	}
}

func TestRunInvalidChoiceLimit(t *testing.T) {
	_, err := run(t, "a\nb\nc\n1\n", &stubActions{}, Options{MaxReprompts: 2})
	if !errors.Is(err, ErrTooManyInvalid) {
		t.Fatalf("Run error = %v, want ErrTooManyInvalid", err)
	}
}

func TestRunEndOfInput(t *testing.T) {
	a := &stubActions{}
	if _, err := run(t, "", a, Options{}); err != nil {
		t.Fatalf("Run on empty input: %v", err)
	}
	if _, err := run(t, "3", a, Options{}); err != nil {
		t.Fatalf("Run on unterminated input: %v", err)
	}
	if len(a.facts) != 1 || a.facts[0] != scanner.MACAddress {
		t.Fatalf("facts = %v", a.facts)
	}
}

func TestRunCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	m := New(strings.NewReader("bad\n"), &out, &stubActions{}, Options{MaxReprompts: 5, InvalidDelay: time.Hour})
	if err := m.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run error = %v, want context.Canceled", err)
	}
}
