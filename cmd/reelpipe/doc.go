// Package main hosts the reelpipe CLI entrypoint and command graph.
//
// The Cobra-based command tree covers queue maintenance (add, import, list,
// remove), single pipeline passes, the artifact file server, the
// multi-account scheduler, and configuration scaffolding. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
