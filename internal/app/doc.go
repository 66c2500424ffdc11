// Package app wires the delivery board together and manages its lifecycle.
//
// New builds every component from a loaded configuration: the confirmation
// store, the board service, the WebSocket hub, the directory watcher, the
// scheduler and the HTTP router. Start performs the initial refresh of both
// boards, starts the background components and the HTTP server. Run blocks
// until SIGINT or SIGTERM and then calls Stop, which shuts the server down
// and releases the store and telemetry providers.
//
// Initialization errors are returned to the caller; the package never calls
// os.Exit.
package app
