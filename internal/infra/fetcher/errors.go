package fetcher

import "errors"

var (
	// ErrInvalidURL indicates the URL is malformed or uses a scheme other than http/https.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrPrivateIP indicates the URL resolves to a loopback, private or link-local address.
	ErrPrivateIP = errors.New("private IP address not allowed")

	// ErrTooManyRedirects indicates the redirect chain exceeded MaxRedirects.
	ErrTooManyRedirects = errors.New("too many redirects")

	// ErrBodyTooLarge indicates the response body exceeded MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")

	// ErrTimeout indicates the request did not finish within Timeout.
	ErrTimeout = errors.New("content fetch timeout")

	// ErrReadabilityFailed indicates go-readability could not parse the page.
	ErrReadabilityFailed = errors.New("readability extraction failed")

	// ErrNoContent indicates neither extractor found any article text.
	ErrNoContent = errors.New("no article content found")
)
