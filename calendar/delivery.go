// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package calendar

import (
	"html/template"
	"mime"
	"net/http"
	"strings"
)

// Platform describes the calendar capabilities of a client, read from
// its User-Agent.
type Platform struct {
	LegacyBlobSave bool // msSaveOrOpenBlob family (IE, EdgeHTML)
	IOSSafari      bool
	IOSChrome      bool
}

// Detect inspects a User-Agent string
func Detect(userAgent string) Platform {
	ua := strings.ToLower(userAgent)
	iOS := strings.Contains(ua, "ipad") || strings.Contains(ua, "iphone")
	criOS := strings.Contains(ua, "crios")

	return Platform{
		LegacyBlobSave: strings.Contains(ua, "msie ") || strings.Contains(ua, "trident/") || strings.Contains(ua, "edge/"),
		IOSSafari:      iOS && strings.Contains(ua, "webkit") && !criOS,
		IOSChrome:      iOS && criOS,
	}
}

// Supported reports whether the client can add an ICS file to its calendar.
// Chrome on iOS cannot open text/calendar downloads.
func Supported(userAgent string) bool {
	return !Detect(userAgent).IOSChrome
}

// Delivery hands a rendered ICS document to the client
type Delivery interface {
	Name() string
	Deliver(w http.ResponseWriter, doc, filename string) error
}

// SelectDelivery picks the delivery variant for a client
func SelectDelivery(userAgent string) Delivery {
	p := Detect(userAgent)
	switch {
	case p.LegacyBlobSave:
		return BlobSaveDelivery{}
	case p.IOSSafari:
		return WindowOpenDelivery{}
	default:
		return AnchorDownloadDelivery{}
	}
}

const icsContentType = "text/calendar;charset=utf-8"

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

// BlobSaveDelivery serves the file for legacy save-or-open dialogs
type BlobSaveDelivery struct{}

func (BlobSaveDelivery) Name() string { return "blob-save" }

func (BlobSaveDelivery) Deliver(w http.ResponseWriter, doc, filename string) error {
	w.Header().Set("Content-Type", icsContentType)
	w.Header().Set("Content-Disposition", attachment(filename))
	// IE refuses to save attachments over https when caching is disabled
	w.Header().Set("Cache-Control", "private")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(doc))
	return err
}

// WindowOpenDelivery opens the document as a data: URI in a new browsing
// context, since downloads are unreliable on iOS Safari.
type WindowOpenDelivery struct{}

func (WindowOpenDelivery) Name() string { return "window-open" }

var windowOpenPage = template.Must(template.New("open").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Filename}}</title></head>
<body>
<a id="open" href="{{.URL}}" target="_blank">Open {{.Filename}}</a>
<script>window.open(document.getElementById("open").href, "_blank");</script>
</body>
</html>
`))

func (WindowOpenDelivery) Deliver(w http.ResponseWriter, doc, filename string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	return windowOpenPage.Execute(w, struct {
		Filename string
		URL      template.URL
	}{filename, template.URL(DataURL(doc))})
}

// AnchorDownloadDelivery is a plain file download
type AnchorDownloadDelivery struct{}

func (AnchorDownloadDelivery) Name() string { return "anchor-download" }

func (AnchorDownloadDelivery) Deliver(w http.ResponseWriter, doc, filename string) error {
	w.Header().Set("Content-Type", icsContentType)
	w.Header().Set("Content-Disposition", attachment(filename))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(doc))
	return err
}
