// Package http contains the chi HTTP handlers for the dashboard API.
// Handlers translate query and body parameters into view state, delegate
// to the dashboard service, and encode view models or RFC 7807 problem
// details. One view's failure never reaches another view's endpoint.
package http
