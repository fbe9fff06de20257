package sentry

import "errors"

var (
	// the request never produced a response
	ErrTransport = errors.New("sentry: transport failure")
	// the page no longer has the structure the scraper expects
	ErrExtraction = errors.New("sentry: unexpected page structure")
	// a body that should have been JSON could not be decoded
	ErrParse = errors.New("sentry: malformed json")
)
