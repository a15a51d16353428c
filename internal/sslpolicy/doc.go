// Package sslpolicy implements per-route transport-security enforcement for
// the Fiber application. Handler code opts a page into HTTPS by calling
// Enforcer.RequireSSL; the companion middleware downgrades any secure request
// that never opted in back to plain HTTP unless the policy says to remain in
// SSL. A one-time setup hook disables the whole mechanism when the execution
// engine cannot terminate TLS, so the same handler code runs unmodified in
// dev and production.
package sslpolicy
