// Package server hosts the Fiber HTTP service and the request middleware
// chain that wires the SSL policy into page handlers. It bootstraps Fiber,
// attaches recovery and request-ID middlewares, runs the policy exit hook
// around every request, and resolves configured page routes so that secure
// pages trigger the entry hook before their handler runs. Handlers are
// injected through the AppHandler interface, which keeps the package
// testable and lets the binary swap in its own page rendering.
package server
