package errors

import (
	"errors"
	"fmt"
	"os"
	"testing"
)

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("package part", "word/styles.xml")

	if got, want := err.Error(), "package part not found: word/styles.xml"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("NotFoundError should unwrap to ErrNotFound")
	}

	bare := &NotFoundError{Resource: "input file"}
	if got, want := bare.Error(), "input file not found"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidation("input", "notes.txt", "must be a .docx file")

	if got, want := err.Error(), "validation failed for input: must be a .docx file"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("ValidationError should unwrap to ErrInvalidInput")
	}
}

func TestIOError(t *testing.T) {
	err := NewIO("extract", "/tmp/in.docx", os.ErrNotExist)

	if got, want := err.Error(), "failed to extract /tmp/in.docx: file does not exist"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("IOError should unwrap to its cause")
	}

	noPath := NewIO("pack", "", os.ErrPermission)
	if got, want := noPath.Error(), "failed to pack: permission denied"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseError(t *testing.T) {
	cause := fmt.Errorf("XML syntax error on line 3")
	err := NewParse("styles", "word/styles.xml", cause)

	if got, want := err.Error(), "failed to parse styles at word/styles.xml: XML syntax error on line 3"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, cause) {
		t.Error("ParseError should unwrap to its cause")
	}

	var pe *ParseError
	if !As(Wrap(err, "resolve styles"), &pe) {
		t.Fatal("As should find the ParseError through Wrap")
	}
	if pe.Format != "styles" {
		t.Errorf("Format = %q, want styles", pe.Format)
	}

	empty := NewParse("document", "", nil)
	if !errors.Is(empty, ErrInvalidInput) {
		t.Error("ParseError without cause should unwrap to ErrInvalidInput")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "context") != nil {
		t.Error("Wrap(nil) should return nil")
	}
	if Wrapf(nil, "context %d", 1) != nil {
		t.Error("Wrapf(nil) should return nil")
	}

	base := errors.New("boom")
	err := Wrapf(base, "stage %s", "pack")
	if got, want := err.Error(), "stage pack: boom"; got != want {
		t.Errorf("Wrapf = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("Wrapf should preserve the chain")
	}
}

func TestChain(t *testing.T) {
	root := os.ErrNotExist
	io := NewIO("open", "a.docx", root)
	top := Wrap(io, "extract package")

	chain := Chain(top)
	if len(chain) != 3 {
		t.Fatalf("len(Chain) = %d, want 3: %v", len(chain), chain)
	}
	if chain[0] != top || chain[1] != error(io) || chain[2] != root {
		t.Errorf("unexpected chain order: %v", chain)
	}

	joined := errors.Join(errors.New("a"), errors.New("b"))
	if got := len(Chain(joined)); got != 3 {
		t.Errorf("len(Chain(joined)) = %d, want 3", got)
	}

	if Chain(nil) != nil {
		t.Error("Chain(nil) should be empty")
	}
}
