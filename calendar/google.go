// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"net/url"
	"strings"
	"time"
)

const (
	googleRenderURL = "https://calendar.google.com/calendar/render?"
	googleDateFmt   = "20060102T150405Z"

	// Source properties identifying the app to Google Calendar
	SourceWebsite = "website:roodle.onrender.com"
	SourceName    = "name:Roodle"
)

// GoogleEvent is the input to GoogleCalendarURL
type GoogleEvent struct {
	Title       string
	Start       time.Time
	End         time.Time
	Description string
	Location    string
	Guests      []string
}

type param struct {
	key, value string
}

// GoogleCalendarURL builds an event-creation link for Google Calendar.
// Parameter order is fixed; details, location, and add only appear when set.
func GoogleCalendarURL(ev GoogleEvent) string {
	params := []param{
		{"action", "TEMPLATE"},
		{"text", ev.Title},
	}
	if ev.Description != "" {
		params = append(params, param{"details", ev.Description})
	}
	if ev.Location != "" {
		params = append(params, param{"location", ev.Location})
	}
	params = append(params,
		param{"dates", ev.Start.UTC().Format(googleDateFmt) + "/" + ev.End.UTC().Format(googleDateFmt)},
		param{"crm", "BUSY"},
		param{"trp", "false"},
		param{"sprop", SourceWebsite},
		param{"sprop", SourceName},
	)
	if len(ev.Guests) > 0 {
		params = append(params, param{"add", strings.Join(ev.Guests, ",")})
	}

	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.key+"="+encodeComponent(p.value))
	}
	return googleRenderURL + strings.Join(parts, "&")
}

// componentUnescaper restores the marks encodeURIComponent leaves alone
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes a query value the way encodeURIComponent does
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
