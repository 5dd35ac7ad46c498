package web

import (
	"bufio"
	"io"
	"strings"
	"time"

	"church/internal/application/projections"
)

const icsLineLimit = 75

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// writeCalendar writes events as an RFC 5545 calendar of all-day entries.
func writeCalendar(w io.Writer, events []projections.EventView, now time.Time) error {
	bw := bufio.NewWriter(w)
	stamp := now.UTC().Format("20060102T150405Z")
	line := func(s string) {
		bw.WriteString(foldICS(s))
		bw.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//church//events//RO")
	line("CALSCALE:GREGORIAN")
	line("X-WR-TIMEZONE:Europe/Brussels")
	for _, e := range events {
		line("BEGIN:VEVENT")
		line("UID:" + e.ID + "@church")
		line("DTSTAMP:" + stamp)
		line("DTSTART;VALUE=DATE:" + e.Date.Format("20060102"))
		line("DTEND;VALUE=DATE:" + e.Date.AddDate(0, 0, 1).Format("20060102"))
		line("SUMMARY:" + icsEscaper.Replace(e.Title))
		if desc := eventDescription(e); desc != "" {
			line("DESCRIPTION:" + icsEscaper.Replace(desc))
		}
		if loc := strings.TrimSpace(strings.Join(nonEmpty(e.Place, e.Address), ", ")); loc != "" {
			line("LOCATION:" + icsEscaper.Replace(loc))
		}
		line("END:VEVENT")
	}
	line("END:VCALENDAR")
	return bw.Flush()
}

func eventDescription(e projections.EventView) string {
	parts := nonEmpty(e.Time, e.RawDescription)
	return strings.Join(parts, "\n")
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// foldICS splits lines longer than 75 octets without breaking UTF-8 sequences.
func foldICS(s string) string {
	if len(s) <= icsLineLimit {
		return s
	}
	var b strings.Builder
	limit := icsLineLimit
	n := 0
	for _, r := range s {
		size := len(string(r))
		if n+size > limit {
			b.WriteString("\r\n ")
			n = 0
			limit = icsLineLimit - 1
		}
		b.WriteRune(r)
		n += size
	}
	return b.String()
}
