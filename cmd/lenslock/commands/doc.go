// Package commands defines the lenslock CLI and wires dependencies for
// subcommands.
//
// Commands
//
//   - init         Resolve or create the local identity and print its fingerprint
//   - fingerprint  Print the identity fingerprint
//   - send         Encrypt and post a message to a thread
//   - recv         Fetch and decrypt a thread's messages
//
// # Implementation
//
// The root command builds the dependency graph (key store, directory
// client, services, session) before any subcommand runs, so handlers
// share one app context. Every subcommand initialises the session
// under a context bounded by --timeout; sending never falls back to
// plaintext when initialisation fails.
package commands
