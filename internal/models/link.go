package models

// LinkPair holds the two decoy-page variants minted for one destination URL.
// Regenerating with the same inputs yields the same pair unless the shortening
// integration rewrote a slot.
type LinkPair struct {
	// Cloudflare is the "checking your browser" interstitial variant (/c/ prefix).
	Cloudflare string

	// Webview is the full-frame embed variant (/w/ prefix).
	Webview string
}
