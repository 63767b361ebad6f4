package output

import (
	"fmt"
	"io"
)

// Successf prints a success line with a success prefix.
func Successf(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, "✅ "+format+"\n", args...)
	return err
}

// Notef prints a non-fatal advisory line with an info prefix.
func Notef(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, "ℹ️  "+format+"\n", args...)
	return err
}

// Warnf prints a warning line with a warning prefix.
func Warnf(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, "⚠️  "+format+"\n", args...)
	return err
}
