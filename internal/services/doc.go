// Package services holds the dashboard evaluation layer: a pure mapping
// from request state to render-ready view models. It owns the two loaded
// source tables and orchestrates the filter, pivot, and chart packages
// for the three views (news, stocks, pivot workspace). The transport
// layer binds HTTP parameters to the state structs here and encodes the
// returned view models.
package services
