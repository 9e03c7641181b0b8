// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

var ErrMissingTitleOrStart = errors.New("both start time and title are mandatory")

// attendeePattern matches "Display Name <email>"
var attendeePattern = regexp.MustCompile(`^([^<]+?)\s*<(.+)>`)

const dataURLPrefix = "data:text/calendar;charset=utf8,"

// ICalEvent is the input to BuildICS. Zero values are omitted.
type ICalEvent struct {
	Title       string
	Start       time.Time
	Description string
	End         time.Time
	Location    string
	Attendees   []string
	URL         string
}

// FormatICSDate renders t in UTC with the seconds always written as 00
func FormatICSDate(t time.Time) string {
	return t.UTC().Format("20060102T1504") + "00Z"
}

// BuildICS renders a single-event VCALENDAR document. rawContent, when
// non-empty, is appended verbatim after the generated properties.
func BuildICS(ev ICalEvent, rawContent string) (string, error) {
	if ev.Title == "" || ev.Start.IsZero() {
		return "", ErrMissingTitleOrStart
	}

	body := []string{
		"DTSTART:" + FormatICSDate(ev.Start),
		"SUMMARY:" + ev.Title,
	}
	if ev.URL != "" {
		body = append(body, "URL:"+ev.URL)
	}
	for _, attendee := range ev.Attendees {
		if line, ok := attendeeLine(attendee); ok {
			body = append(body, line)
		}
	}
	if !ev.End.IsZero() {
		body = append(body, "DTEND:"+FormatICSDate(ev.End))
	}
	if ev.Description != "" {
		body = append(body, "DESCRIPTION:"+ev.Description)
	}
	if ev.Location != "" {
		body = append(body, "LOCATION:"+ev.Location)
	}
	if rawContent != "" {
		body = append(body, rawContent)
	}

	return strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"BEGIN:VEVENT",
		strings.Join(body, "\n"),
		"END:VEVENT",
		"END:VCALENDAR",
	}, "\n"), nil
}

func attendeeLine(attendee string) (string, bool) {
	m := attendeePattern.FindStringSubmatch(attendee)
	if m == nil {
		return "", false
	}
	return strings.Join([]string{
		"ATTENDEE",
		"CN=" + m[1],
		"CUTYPE=INDIVIDUAL",
		"PARTSTAT=NEEDS-ACTION",
		"ROLE=REQ-PARTICIPANT",
		"RSVP=TRUE:mailto:" + m[2],
	}, ";"), true
}

// FormatAttendee renders an email in the "name <email>" form BuildICS expects
func FormatAttendee(name, email string) string {
	return name + " <" + email + ">"
}

// DataURL wraps a document in a text/calendar data: URI
func DataURL(doc string) string {
	return encodeURI(dataURLPrefix + doc)
}

// encodeURI escapes everything except unreserved and reserved URI characters
func encodeURI(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keepInURI(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func keepInURI(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte(";,/?:@&=+$-_.!~*'()#", c) >= 0
}
