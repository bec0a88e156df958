// Package api handles incoming HTTP requests for the hotel catalog and
// account endpoints: routing parameters, request validation and response
// formatting. It translates HTTP concerns to service calls and maps domain
// errors back to status codes with generic, non-leaking messages.
package api
