// Package middleware provides the HTTP middleware layer of the
// negotiation gateway.
//
// # Middleware Components
//
//   - Negotiate: server-driven content negotiation, request-context
//     format propagation and response header decoration
//   - Request ID: unique request identifier injection
//   - Recovery: panic recovery with stack trace logging
//   - Logging: structured request/response logging including the
//     negotiated format
//
// # Usage
//
// Middleware functions follow the standard Go pattern:
//
//	handler := middleware.RequestID()(
//	    middleware.Recovery(logger)(
//	        middleware.Logging(logger)(
//	            middleware.Negotiate(negotiator, logger)(yourHandler),
//	        ),
//	    ),
//	)
//
// Used as a terminal endpoint, middleware.Handler wires the negotiation
// layer in front of the 406 fallback.
package middleware
