// Package codec converts operator identifiers and destination URLs to and from
// the text tokens embedded in tracking paths.
package codec

import (
	"encoding/base64"
	"math"
	"strconv"

	apperrors "github.com/nwatteau/linktrap/internal/errors"
)

// EncodeID renders a non-negative operator identifier as lowercase base-36.
func EncodeID(n int64) string {
	return strconv.FormatInt(n, 36)
}

// DecodeID parses a base-36 identifier token back to an integer. The whole
// token must parse, case-insensitively; empty tokens, sign prefixes, characters
// outside [0-9a-zA-Z] and values beyond the int64 range all fail.
func DecodeID(token string) (int64, error) {
	n, err := strconv.ParseUint(token, 36, 64)
	if err != nil {
		return 0, &apperrors.DecodeError{Token: token, Reason: "not a base-36 identifier", Cause: err}
	}
	if n > math.MaxInt64 {
		return 0, &apperrors.DecodeError{Token: token, Reason: "identifier out of range"}
	}
	return int64(n), nil
}

// EncodeURL renders a destination URL as standard-alphabet, padded base64.
func EncodeURL(raw string) string {
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeURL reverses EncodeURL. The decoded bytes are returned as-is; they are
// not re-validated as a URL.
func DecodeURL(token string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", &apperrors.DecodeError{Token: token, Reason: "not valid base64", Cause: err}
	}
	return string(raw), nil
}
