// Package controller contains reusable HTTP middlewares and handlers that are
// independent of the API's business logic: CORS, access logging and pprof.
package controller
