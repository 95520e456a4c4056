package models

import "time"

// Visit is the data bundle handed to a decoy-page template when a tracking
// link is opened.
type Visit struct {
	// IP is the visitor's apparent client address, forwarded headers resolved.
	IP string

	// Time is the request timestamp already formatted for display.
	Time string

	// DecoyURL is the decoded destination the page embeds or redirects to.
	// It is rendered as decoded; well-formedness is only checked on intake.
	DecoyURL string

	// UID is the raw identifier token, passed through opaquely so the page's
	// callback script can tag its reports.
	UID string

	// BaseURL is the externally advertised address the callback script posts to.
	BaseURL string

	// ShortenEnabled mirrors the shortening integration toggle.
	ShortenEnabled bool
}

// VisitEvent is the lightweight event pushed through the notification channel
// when a tracking link is opened. Workers turn it into a bot message later.
type VisitEvent struct {
	OperatorID int64     // decoded chat identifier the link belongs to
	UID        string    // raw identifier token from the path
	IP         string    // visitor address
	UserAgent  string    // visitor browser/client information
	Timestamp  time.Time // when the visit occurred
	Variant    string    // which decoy variant was served ("cloudflare"/"webview")
}
