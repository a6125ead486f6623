// Package middleware provides net/http middleware for observing
// bulwark error handling. Both middlewares are plain
// func(http.Handler) http.Handler and compose with chi's r.Use().
//
// Mount them OUTSIDE the boundary they observe; they learn which error
// a boundary handled through the boundary package's recorder:
//
//	r.Use(middleware.OpenTelemetry())
//	r.Use(middleware.Prometheus())
//	r.Use(root.Middleware)
package middleware
