package dberr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
	}{
		{"schema", Schemaf("bad %s", "schema"), ErrSchema, KindSchema},
		{"format", Formatf("bad %d", 1), ErrFormat, KindFormat},
		{"request", Requestf("bad"), ErrRequest, KindRequest},
		{"not found", NotFoundf("missing"), ErrNotFound, KindNotFound},
		{"dumper", Dumperf("loop"), ErrDumper, KindDumper},
		{"metadata", Metadataf("example"), ErrSchemaMetadata, KindSchemaMetadata},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("load: %w", tt.err)
			if !errors.Is(wrapped, tt.sentinel) {
				t.Errorf("errors.Is(%v) = false, want true", wrapped)
			}
			kind, ok := KindOf(wrapped)
			if !ok || kind != tt.kind {
				t.Errorf("KindOf = %v, %v, want %v", kind, ok, tt.kind)
			}
			var e *Error
			if !errors.As(wrapped, &e) {
				t.Fatal("errors.As failed")
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", e.Kind, tt.kind)
			}
		})
	}
}

func TestKindsAreDistinct(t *testing.T) {
	err := Formatf("Key value golden of SchemaApple is not unique")
	if errors.Is(err, ErrSchema) {
		t.Error("format error matched schema sentinel")
	}
	if err.Error() != "Key value golden of SchemaApple is not unique" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("yaml: line 3: mapping values are not allowed")
	err := Wrap(KindFormat, cause)
	if !errors.Is(err, ErrFormat) {
		t.Error("wrapped error is not a format error")
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped error lost its cause")
	}

	inner := Schemaf("Content must be defined in schema")
	if got := Wrap(KindFormat, inner); !errors.Is(got, ErrSchema) {
		t.Error("Wrap reclassified an already classified error")
	}

	if Wrap(KindFormat, nil) != nil {
		t.Error("Wrap(nil) != nil")
	}
}
