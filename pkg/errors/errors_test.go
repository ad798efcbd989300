package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeDependencyCycle, "cannot order: %s", "a -> b -> a")

	if err.Code != ErrCodeDependencyCycle {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDependencyCycle)
	}

	if err.Message != "cannot order: a -> b -> a" {
		t.Errorf("Message = %v, want %v", err.Message, "cannot order: a -> b -> a")
	}

	expected := "DEPENDENCY_CYCLE: cannot order: a -> b -> a"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := &ToolError{Command: "yay -Qql foo", ExitCode: 1, Stderr: "error: package 'foo' was not found\n"}
	err := Wrap(ErrCodeToolFailure, cause, "list files of %s", "foo")

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	var te *ToolError
	if !errors.As(err, &te) {
		t.Fatal("errors.As(err, *ToolError) = false, want true")
	}
	if te.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", te.ExitCode)
	}

	want := "TOOL_FAILURE: list files of foo: yay -Qql foo exited with status 1: error: package 'foo' was not found"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeTimeout, "test"),
			code:     ErrCodeTimeout,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeTimeout, "test"),
			code:     ErrCodeToolFailure,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeToolFailure, New(ErrCodeTimeout, "inner"), "outer"),
			code:     ErrCodeToolFailure,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeDependencyCycle, "a -> b -> a")); got != ErrCodeDependencyCycle {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeDependencyCycle)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode() = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeInvalidInput, "friendly message"),
			expected: "friendly message",
		},
		{
			name:     "wrapped chain drops codes",
			err:      Wrap(ErrCodeToolFailure, New(ErrCodeTimeout, "ldd timed out"), "inspect /usr/bin/x"),
			expected: "inspect /usr/bin/x: ldd timed out",
		},
		{
			name:     "plain error",
			err:      errors.New("plain error"),
			expected: "plain error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestToolError(t *testing.T) {
	t.Run("with stderr", func(t *testing.T) {
		err := &ToolError{Command: "yay -Qqm", ExitCode: 2, Stderr: "boom\n"}
		if got, want := err.Error(), "yay -Qqm exited with status 2: boom"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})

	t.Run("without stderr", func(t *testing.T) {
		err := &ToolError{Command: "yay -Qqm", ExitCode: 2}
		if got, want := err.Error(), "yay -Qqm exited with status 2"; got != want {
			t.Errorf("Error() = %q, want %q", got, want)
		}
	})
}
