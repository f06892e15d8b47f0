package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "runtime error",
			code:    "E002",
			wantMsg: "Root element changed during patch",
			wantCat: CategoryRuntime,
		},
		{
			name:    "template error",
			code:    "E004",
			wantMsg: "Malformed loop binding",
			wantCat: CategoryTemplate,
		},
		{
			name:    "config error",
			code:    "E008",
			wantMsg: "Invalid configuration",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("render: %w", New("E005").WithNode("div>t-for"))

	if !stderrors.Is(err, New("E005")) {
		t.Error("errors.Is should match a wrapped TNTError by code")
	}
	if stderrors.Is(err, New("E004")) {
		t.Error("errors.Is should not match a different code")
	}
	if got := Code(err); got != "E005" {
		t.Errorf("Code() = %q, want E005", got)
	}
	if got := Code(stderrors.New("plain")); got != "" {
		t.Errorf("Code() of plain error = %q, want empty", got)
	}
}

func TestErrorStringIncludesCause(t *testing.T) {
	err := New("E010").Wrap(stderrors.New("access denied"))
	want := "E010: Snapshot publishing failed: access denied"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
	if stderrors.Unwrap(err).Error() != "access denied" {
		t.Error("Unwrap should return the cause")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E001") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E002")
	if FromError(orig, "E001") != orig {
		t.Error("FromError should return an existing TNTError unchanged")
	}

	wrapped := FromError(stderrors.New("boom"), "E010")
	if wrapped.Code != "E010" || wrapped.Wrapped == nil {
		t.Errorf("FromError = %+v, want E010 wrapping cause", wrapped)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E004").
		WithNode("html>body>div>t-for").
		WithSuggestion(`Write the binding as "item in items"`)

	out := err.Format()
	for _, want := range []string{
		"ERROR E004: Malformed loop binding",
		"at html>body>div>t-for",
		`Hint: Write the binding as "item in items"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E002").WithNode("div")
	if got := err.FormatCompact(); got != "div: E002: Root element changed during patch" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryProtocol, "unknown element %q", "h9")
	if err.Message != `unknown element "h9"` {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Code != "" {
		t.Errorf("Code = %q, want empty", err.Code)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText of empty string should be nil")
	}
}

func TestRegistryCodes(t *testing.T) {
	for _, code := range []string{"E001", "E002", "E003", "E004", "E005", "E006", "E007", "E008", "E009", "E010", "E011"} {
		if _, ok := GetTemplate(code); !ok {
			t.Errorf("code %s not registered", code)
		}
	}
	if len(GetAllCodes()) < 11 {
		t.Errorf("expected at least 11 codes, got %d", len(GetAllCodes()))
	}
}
