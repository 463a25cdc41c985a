// Package middleware provides the gin middleware the gateway's HTTP transport
// runs in front of its routes: CORS, panic recovery, correlation ids and
// request logging.
package middleware
