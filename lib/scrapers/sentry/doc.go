// Package sentry drives the sentry web dashboard the way a browser would, so
// integration tests can assert on what the dashboard shows.
//
// every method on Client has this structure:
// 1. transform input into HTTP request object (method, path, form body)
// 2. make the request through the client's session (cookie jar)
// 3. turn the response into output: goquery selectors into a struct or a
// slice of structs, or a json body into raw values.
//
// the login state is an implied input of every method except Login, a
// Client that never logged in sees whatever an anonymous visitor would.
package sentry
