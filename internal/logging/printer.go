package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"bootkit/internal/notify"
)

// Style selects how a Printer encodes color.
type Style int

const (
	// StylePlain writes the message without escapes.
	StylePlain Style = iota
	// StyleANSI uses 24-bit SGR sequences understood by modern terminals.
	StyleANSI
	// StyleXcode uses the XcodeColors escape format: ESC[fgR,G,B; ... ESC[;
	StyleXcode
)

const escape = "\x1b["

// DidPrint receives every line a Printer writes, after the write, with the
// escapes included and no trailing newline. The source is the Printer.
var DidPrint = notify.New[string](notify.WithName("log.did_print"))

// Printer writes colored debug lines.
type Printer struct {
	mu       sync.Mutex
	out      io.Writer
	style    Style
	didPrint *notify.Channel[string]
}

// PrinterOption configures a Printer.
type PrinterOption func(*Printer)

// WithStyle forces a style instead of detecting one from the writer.
func WithStyle(s Style) PrinterOption { return func(p *Printer) { p.style = s } }

// WithDidPrint posts printed lines on ch instead of DidPrint.
func WithDidPrint(ch *notify.Channel[string]) PrinterOption {
	return func(p *Printer) { p.didPrint = ch }
}

// NewPrinter writes to out, using StyleANSI on a terminal and StylePlain otherwise.
func NewPrinter(out io.Writer, opts ...PrinterOption) *Printer {
	p := &Printer{out: out, style: StylePlain, didPrint: DidPrint}
	if ShouldColorize(out) {
		p.style = StyleANSI
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format renders v in color c without writing it.
func (p *Printer) Format(c Color, v any) string {
	msg := "nil"
	if v != nil {
		msg = fmt.Sprint(v)
	}
	switch p.style {
	case StyleXcode:
		return fmt.Sprintf("%sfg%d,%d,%d;%s%s;", escape, c.R, c.G, c.B, msg, escape)
	case StyleANSI:
		return fmt.Sprintf("%s38;2;%d;%d;%dm%s%s0m", escape, c.R, c.G, c.B, msg, escape)
	default:
		return msg
	}
}

// Print writes v in color c followed by a newline, then posts the line.
func (p *Printer) Print(c Color, v any) string {
	line := p.Format(c, v)
	p.mu.Lock()
	_, _ = io.WriteString(p.out, line+"\n")
	p.mu.Unlock()
	if p.didPrint != nil {
		p.didPrint.PostFrom(line, p)
	}
	return line
}

// Yellow, Red, Green, Gray and Blue print v in the matching palette color.
func (p *Printer) Yellow(v any) string { return p.Print(ColorYellow, v) }
func (p *Printer) Red(v any) string    { return p.Print(ColorRed, v) }
func (p *Printer) Green(v any) string  { return p.Print(ColorGreen, v) }
func (p *Printer) Gray(v any) string   { return p.Print(ColorGray, v) }
func (p *Printer) Blue(v any) string   { return p.Print(ColorBlue, v) }

var (
	stdMu      sync.Mutex
	stdPrinter = NewPrinter(os.Stdout)
)

// SetDefault replaces the printer used by the package-level helpers.
func SetDefault(p *Printer) {
	stdMu.Lock()
	stdPrinter = p
	stdMu.Unlock()
}

func std() *Printer {
	stdMu.Lock()
	defer stdMu.Unlock()
	return stdPrinter
}

// Yellow prints v on the default printer.
func Yellow(v any) { std().Yellow(v) }

// Red prints v on the default printer.
func Red(v any) { std().Red(v) }

// Green prints v on the default printer.
func Green(v any) { std().Green(v) }

// Gray prints v on the default printer.
func Gray(v any) { std().Gray(v) }

// Blue prints v on the default printer.
func Blue(v any) { std().Blue(v) }
