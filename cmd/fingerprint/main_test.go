package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-tangra/go-tangra-fingerprint/internal/menu"
	"github.com/go-tangra/go-tangra-fingerprint/internal/scanner"
	"github.com/go-tangra/go-tangra-fingerprint/internal/store"
)

type failingActions struct{ err error }

func (failingActions) Fact(context.Context, scanner.Fact) (string, error) { return "", nil }
func (a failingActions) Collect(context.Context) (store.Record, store.Outcome, error) {
	return store.Record{}, 0, a.err
}

func TestReportErrorSkipsMenuErrors(t *testing.T) {
	var menuOut bytes.Buffer
	m := menu.New(strings.NewReader("9\n"), &menuOut, failingActions{err: fmt.Errorf("store record: %w", store.ErrMalformed)}, menu.Options{})
	err := m.Run(context.Background())
	if err == nil {
		t.Fatal("Run returned nil, want store failure")
	}

	var stderr bytes.Buffer
	reportError(&stderr, err)
	if stderr.Len() != 0 {
		t.Fatalf("menu error printed twice: %q", stderr.String())
	}
	if n := strings.Count(menuOut.String(), "store record"); n != 1 {
		t.Fatalf("menu printed the failure %d times:\n%s", n, menuOut.String())
	}
}

func TestReportErrorPrintsOtherErrors(t *testing.T) {
	var stderr bytes.Buffer
	reportError(&stderr, errors.New("load config: missing file"))
	if got, want := stderr.String(), "Error: load config: missing file\n"; got != want {
		t.Fatalf("reportError wrote %q, want %q", got, want)
	}
}
