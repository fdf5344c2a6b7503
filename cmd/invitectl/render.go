package main

import (
	"fmt"
	"io"
	"time"

	"github.com/aussiebroadwan/invitelinks/pkg/lifecycle"
	"github.com/aussiebroadwan/invitelinks/pkg/policy"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

const columnWidthID = 28

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	idStyle      = lipgloss.NewStyle().Width(columnWidthID).Foreground(lipgloss.Color("8"))
	nameStyle    = lipgloss.NewStyle().Width(24)
	expiresStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	expiredStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
)

func renderSnapshot(w io.Writer, snap lifecycle.Snapshot, now time.Time) {
	fmt.Fprintln(w, headerStyle.Render("Invitation links"))
	if len(snap.Links) == 0 {
		fmt.Fprintln(w, "  none yet, create one with 'invitectl create NAME'")
	}
	for _, link := range snap.Links {
		fmt.Fprintln(w, renderRow(link, now))
	}
	fmt.Fprintln(w, remainingLine(snap.Remaining))
}

func renderRow(link lifecycle.AnnotatedLink, now time.Time) string {
	id := idStyle.Render(link.ID)
	name := nameStyle.Render(link.InviteeName)

	if link.Expired {
		status := "expired " + humanize.RelTime(link.ExpiresAt, now, "ago", "from now")
		return expiredStyle.Render(id + name + status)
	}

	status := expiresStyle.Render("expires " + humanize.RelTime(link.ExpiresAt, now, "ago", "from now"))
	return id + name + status + "\n" + lipgloss.NewStyle().PaddingLeft(columnWidthID).Render(urlStyle.Render(link.URL))
}

func remainingLine(remaining int) string {
	return fmt.Sprintf("%d of %d links left", remaining, policy.MaxLinks)
}
