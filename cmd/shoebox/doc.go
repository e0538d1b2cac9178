// Package main hosts the shoebox CLI entrypoint and command graph.
//
// The Cobra-based command tree surfaces the pipeline stages as independent
// subcommands: scan previews parsing, organize materializes the canonical
// tree, upload pushes it to the remote photo library, and the albums, ledger,
// and config families cover operator maintenance. It centralizes
// configuration resolution and structured logging setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
