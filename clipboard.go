package main

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
)

var copyConfirmDuration = 2 * time.Second

const (
	copyPathNative   = "native"
	copyPathTerminal = "terminal"
)

var (
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	ErrNoTerminal           = errors.New("no terminal attached")
)

// clipboardWriter delivers plain text to a clipboard
type clipboardWriter interface {
	Available() bool
	WriteText(text string) error
}

// nativeClipboard writes through the operating system clipboard. It is
// only used in a local session: over SSH it would fill the remote
// machine's clipboard instead of the user's.
type nativeClipboard struct {
	write       func(string) error
	unsupported bool
	getenv      func(string) string
}

func newNativeClipboard() *nativeClipboard {
	return &nativeClipboard{
		write:       clipboard.WriteAll,
		unsupported: clipboard.Unsupported,
		getenv:      os.Getenv,
	}
}

func (c *nativeClipboard) Available() bool {
	if c.unsupported {
		return false
	}
	return c.getenv("SSH_TTY") == "" && c.getenv("SSH_CONNECTION") == ""
}

func (c *nativeClipboard) WriteText(text string) error {
	if !c.Available() {
		return ErrClipboardUnavailable
	}
	return c.write(text)
}

// osc52Clipboard asks the terminal emulator to set the clipboard with an
// OSC 52 escape sequence.
type osc52Clipboard struct {
	out        io.Writer
	isTerminal func() bool
	getenv     func(string) string
}

func newOSC52Clipboard(f *os.File) *osc52Clipboard {
	c := &osc52Clipboard{getenv: os.Getenv, isTerminal: func() bool { return false }}
	if f != nil {
		c.out = f
		c.isTerminal = func() bool {
			return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	return c
}

func (c *osc52Clipboard) Available() bool {
	return c.out != nil && c.isTerminal()
}

func (c *osc52Clipboard) WriteText(text string) error {
	if !c.Available() {
		return ErrNoTerminal
	}

	seq := osc52.New(text)
	switch {
	case c.getenv("TMUX") != "":
		seq = seq.Tmux()
	case strings.HasPrefix(c.getenv("TERM"), "screen"):
		seq = seq.Screen()
	}

	_, err := seq.WriteTo(c.out)
	return err
}

// copyTarget identifies a card within one render pass
type copyTarget struct {
	gen   int
	index int
}

// copyResultMsg carries the outcome of a copy attempt
type copyResultMsg struct {
	target copyTarget
	text   string
	path   string
	err    error
}

// copyRevertMsg ends the confirmation shown after a successful copy
type copyRevertMsg struct {
	target copyTarget
}

// Copier copies answers as plain text, preferring the native clipboard and
// falling back to the terminal.
type Copier struct {
	formatter Formatter
	secure    clipboardWriter
	fallback  clipboardWriter
	logger    *zap.Logger
}

// NewCopier builds a copier. secure or fallback may be nil.
func NewCopier(f Formatter, secure, fallback clipboardWriter, logger *zap.Logger) *Copier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Copier{formatter: f, secure: secure, fallback: fallback, logger: logger}
}

// Payload returns the text copied for an entry: the plain text content of
// the formatted answer.
func (c *Copier) Payload(e Entry) string {
	return c.formatter.Plain(e.Answer)
}

// Copy starts copying the entry's answer. When the native clipboard can be
// used the write runs as a command and reports back with a copyResultMsg.
// Otherwise the terminal fallback runs right away and its result is
// returned directly.
func (c *Copier) Copy(target copyTarget, e Entry) (tea.Cmd, *copyResultMsg) {
	text := c.Payload(e)

	if c.secure != nil && c.secure.Available() {
		secure := c.secure
		return func() tea.Msg {
			return copyResultMsg{target: target, text: text, path: copyPathNative, err: secure.WriteText(text)}
		}, nil
	}

	res := c.Fallback(target, text)
	return nil, &res
}

// Fallback writes text through the terminal clipboard
func (c *Copier) Fallback(target copyTarget, text string) copyResultMsg {
	res := copyResultMsg{target: target, text: text, path: copyPathTerminal}
	if c.fallback == nil {
		res.err = ErrClipboardUnavailable
		return res
	}

	res.err = c.fallback.WriteText(text)
	return res
}

// Resolve turns a failed native attempt into a fallback attempt. Any other
// result is returned unchanged.
func (c *Copier) Resolve(res copyResultMsg) copyResultMsg {
	if res.err == nil || res.path != copyPathNative {
		return res
	}

	c.logger.Warn("native clipboard failed, trying terminal", zap.Error(res.err))
	return c.Fallback(res.target, res.text)
}

// revertAfter schedules the end of a copy confirmation. Timers are never
// cancelled; whichever fires last decides the final state.
func revertAfter(target copyTarget) tea.Cmd {
	return tea.Tick(copyConfirmDuration, func(time.Time) tea.Msg {
		return copyRevertMsg{target: target}
	})
}
