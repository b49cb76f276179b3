// Package api assembles the request-handling pipeline: ambient middleware,
// the error stage, the JSON body decoder, the /docs mount and the /api mount.
// It also provides the error-returning handler adapter used by API routers.
package api
