// Package config loads application configuration from environment
// variables (MARKETDASH_ prefix) layered over an optional YAML file,
// with struct-tag defaults filling the rest. It covers the HTTP server,
// security (CORS and rate limiting), logging, and the locations of the
// two source workbooks.
package config
