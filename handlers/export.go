// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/danielhkuo/roodle/calendar"
	"github.com/danielhkuo/roodle/cliparse"
	"github.com/danielhkuo/roodle/logging"
	"github.com/danielhkuo/roodle/middleware"
	"github.com/danielhkuo/roodle/models"
)

type ExportHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewExportHandler(db *sql.DB, cfg cliparse.Config) *ExportHandler {
	return &ExportHandler{db: db, cfg: cfg}
}

// exportEvent is everything the calendar encoders need for one option
type exportEvent struct {
	poll   models.Poll
	option models.PollOption
	guests []string
}

func (e exportEvent) title() string {
	if e.poll.Title != "" {
		return e.poll.Title
	}
	return e.poll.ID
}

func (e exportEvent) filename() string {
	return "roodle-" + e.poll.ID + ".ics"
}

func (e exportEvent) googleURL() string {
	return calendar.GoogleCalendarURL(calendar.GoogleEvent{
		Title:       e.title(),
		Start:       e.option.Start,
		End:         e.option.End,
		Description: e.poll.Description,
		Location:    e.poll.Location,
		Guests:      e.guests,
	})
}

func (e exportEvent) ics(baseURL string) (string, error) {
	attendees := make([]string, 0, len(e.guests))
	for _, g := range e.guests {
		attendees = append(attendees, calendar.FormatAttendee(g, g))
	}
	return calendar.BuildICS(calendar.ICalEvent{
		Title:       e.title(),
		Start:       e.option.Start,
		End:         e.option.End,
		Description: e.poll.Description,
		Location:    e.poll.Location,
		Attendees:   attendees,
		URL:         baseURL + "/poll/" + e.poll.ID,
	}, "")
}

// loadEvent resolves the poll and option in the path and writes the error
// response itself when it cannot.
func (h *ExportHandler) loadEvent(w http.ResponseWriter, r *http.Request) (exportEvent, bool) {
	logger := logging.FromContext(r.Context())
	pollID, optionID := r.PathValue("id"), r.PathValue("optionId")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid poll id")
		return exportEvent{}, false
	}
	if optionID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "invalid option id")
		return exportEvent{}, false
	}

	poll, err := loadPoll(r.Context(), h.db, pollID)
	if errors.Is(err, errPollNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "poll not found")
		return exportEvent{}, false
	}
	if err != nil {
		logger.Error("failed to load poll", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return exportEvent{}, false
	}

	ev := exportEvent{poll: poll}
	found := false
	for _, o := range poll.Options {
		if o.ID == optionID {
			ev.option, found = o, true
			break
		}
	}
	if !found {
		middleware.ErrorResponse(w, http.StatusNotFound, "option not found")
		return exportEvent{}, false
	}

	records, err := loadAvailabilities(r.Context(), h.db, pollID)
	if err != nil {
		logger.Error("failed to load availabilities", "poll_id", pollID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return exportEvent{}, false
	}
	ev.guests = Emails(Aggregate(poll.Options, records)[optionID])

	return ev, true
}

// GetExport handles GET /api/v1/poll/{id}/option/{optionId}/export
func (h *ExportHandler) GetExport(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	doc, err := ev.ics(h.cfg.BaseURL)
	if err != nil {
		logger.Error("failed to build calendar file", "poll_id", ev.poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	guests := ev.guests
	if guests == nil {
		guests = []string{}
	}

	ua := r.UserAgent()
	middleware.DataResponse(w, http.StatusOK, models.ExportResponse{
		GoogleCalendarURL: ev.googleURL(),
		ICSDataURL:        calendar.DataURL(doc),
		Filename:          ev.filename(),
		Delivery:          calendar.SelectDelivery(ua).Name(),
		Supported:         calendar.Supported(ua),
		Guests:            guests,
	})
}

// RedirectGoogle handles GET /api/v1/poll/{id}/option/{optionId}/google
func (h *ExportHandler) RedirectGoogle(w http.ResponseWriter, r *http.Request) {
	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}
	http.Redirect(w, r, ev.googleURL(), http.StatusFound)
}

// DownloadICS handles GET /api/v1/poll/{id}/option/{optionId}/ics
func (h *ExportHandler) DownloadICS(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())
	ua := r.UserAgent()
	if !calendar.Supported(ua) {
		middleware.ErrorResponse(w, http.StatusNotAcceptable, "adding to calendar is not supported on this browser")
		return
	}

	ev, ok := h.loadEvent(w, r)
	if !ok {
		return
	}

	doc, err := ev.ics(h.cfg.BaseURL)
	if err != nil {
		logger.Error("failed to build calendar file", "poll_id", ev.poll.ID, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, middleware.MsgInternalError)
		return
	}

	delivery := calendar.SelectDelivery(ua)
	if err := delivery.Deliver(w, doc, ev.filename()); err != nil {
		// headers are already out
		logger.Warn("failed to deliver calendar file", "delivery", delivery.Name(), "error", err)
		return
	}

	logger.Info("calendar file delivered", "poll_id", ev.poll.ID, "delivery", delivery.Name())
}
