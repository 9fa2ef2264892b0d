// Package cli provides the interactive terminal client.
//
// It wires configuration, the local credential database, the backend client
// and the session services into a REPL. Commands stand in for the views of
// a web client: `status` and `whoami` are protected and run the session
// guard first, `login` prints the provider URL and waits for the browser to
// come back to a local callback listener.
//
// The REPL and the callback listener run side by side until the user exits.
// See App, runREPL and App.Run for details.
package cli
