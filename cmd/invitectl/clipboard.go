package main

import (
	"context"
	"io"

	"github.com/aussiebroadwan/invitelinks/pkg/lifecycle"
	"github.com/aymanbagabas/go-osc52/v2"
)

// terminalClipboard copies through the terminal with an OSC 52 escape
// sequence, which also works over SSH. Inside tmux or screen the sequence
// is wrapped so the multiplexer passes it on.
func terminalClipboard(tty io.Writer, getenv func(string) string) lifecycle.Clipboard {
	return lifecycle.ClipboardFunc(func(_ context.Context, text string) error {
		seq := osc52.New(text)
		switch {
		case getenv("TMUX") != "":
			seq = seq.Tmux()
		case getenv("STY") != "":
			seq = seq.Screen()
		}
		_, err := seq.WriteTo(tty)
		return err
	})
}
