// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package calendar builds calendar export artifacts for poll options.

# Google Calendar

GoogleCalendarURL returns an event-creation link:

	link := calendar.GoogleCalendarURL(calendar.GoogleEvent{
		Title: "Team Sync",
		Start: start,
		End:   end,
	})

Dates are formatted as YYYYMMDDTHHmmssZ in UTC. The details, location,
and add parameters are only present when set.

# iCalendar

BuildICS renders a single VEVENT document and fails with
ErrMissingTitleOrStart when the title or start is missing:

	doc, err := calendar.BuildICS(ev, "")

Timestamps always carry 00 seconds. Attendees must look like
"Name <email>"; anything else is dropped.

DataURL wraps a document in a data: URI.

# Delivery

How the file reaches the client depends on the browser:

  - BlobSaveDelivery: legacy IE and EdgeHTML save-or-open dialogs
  - WindowOpenDelivery: iOS Safari, opened as a data: URI
  - AnchorDownloadDelivery: everything else

SelectDelivery picks one from the User-Agent. Supported returns false
for Chrome on iOS.
*/
package calendar
