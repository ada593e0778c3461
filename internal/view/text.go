package view

import (
	"fmt"
	"io"
	"strings"
)

// TextDisplay renders to a terminal. Results and errors go to out; loading
// and notices go to status so that out stays clean when piped.
type TextDisplay struct {
	out    io.Writer
	status io.Writer
}

// NewTextDisplay returns a TextDisplay. A nil status discards loading and notices.
func NewTextDisplay(out, status io.Writer) *TextDisplay {
	if status == nil {
		status = io.Discard
	}
	return &TextDisplay{out: out, status: status}
}

func (d *TextDisplay) ShowLoading() {
	fmt.Fprintln(d.status, "Loading...")
}

func (d *TextDisplay) ShowSummary(s Summary) error {
	var b strings.Builder
	fmt.Fprintln(&b, s.Title)
	fmt.Fprintln(&b, s.LocalTime)
	fmt.Fprintf(&b, "%s  %s\n", s.Temperature, s.Description)
	fmt.Fprintf(&b, "Humidity: %s\n", s.Humidity)
	fmt.Fprintf(&b, "Wind: %s\n", s.Wind)
	fmt.Fprintf(&b, "Icon: %s\n", s.IconURL)
	_, err := io.WriteString(d.out, b.String())
	return err
}

func (d *TextDisplay) ShowError(message string) error {
	_, err := fmt.Fprintf(d.out, "Error: %s\n", message)
	return err
}

func (d *TextDisplay) Notify(message string) {
	fmt.Fprintf(d.status, "! %s\n", message)
}
