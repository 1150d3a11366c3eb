// Package app contains the core application logic. It wires the manifest
// loader, the module registry and the factory together and runs the load
// and validate commands, decoupled from any specific entrypoint like a CLI.
package app
