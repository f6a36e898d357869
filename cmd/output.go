package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"vavoo/internal/history"
	"vavoo/internal/media"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
)

// printer renders command output as styled text on a terminal and as JSON otherwise.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, forceJSON bool) *printer {
	asJSON := forceJSON
	if f, ok := w.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		asJSON = true
	}
	return &printer{w: w, json: asJSON}
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Result prints one extraction result.
func (p *printer) Result(source string, res *media.Result) error {
	if p.json {
		return p.encode(res)
	}

	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("source:  "), dimStyle.Render(source))
	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("stream:  "), res.DestinationURL)
	fmt.Fprintf(p.w, "%s %s\n", labelStyle.Render("endpoint:"), res.MediaflowEndpoint)

	keys := make([]string, 0, len(res.RequestHeaders))
	for k := range res.RequestHeaders {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(p.w, "%s %s: %s\n", labelStyle.Render("header:  "), k, res.RequestHeaders[k])
	}
	return nil
}

// Signature prints a handshake signature.
func (p *printer) Signature(flow, sig string) error {
	if p.json {
		return p.encode(map[string]string{"flow": flow, "signature": sig})
	}
	_, err := fmt.Fprintln(p.w, sig)
	return err
}

// History prints history entries.
func (p *printer) History(entries []media.HistoryEntry) error {
	if p.json {
		return p.encode(entries)
	}
	for _, line := range history.FormatForDisplay(entries) {
		fmt.Fprintln(p.w, line)
	}
	return nil
}
