package ui

import (
	"fmt"
	"io"
)

// Ok prints a success line.
func Ok(w io.Writer, msg string) {
	fmt.Fprintln(w, Done.Render(IconOk+msg))
}

// Err prints an error line.
func Err(w io.Writer, msg string) {
	fmt.Fprintln(w, Error.Render(IconError+msg))
}

// Kv prints a padded key-value pair.
func Kv(w io.Writer, key, value string) {
	fmt.Fprintf(w, "%s %s\n", KeyStyle.Render(fmt.Sprintf("  %-22s", key)), value)
}

func Header(w io.Writer, s string) {
	fmt.Fprintln(w, Title.Render(s))
}
