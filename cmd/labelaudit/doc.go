// Package main hosts the labelaudit CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration once, builds the structured
// logger, and hands the heavy lifting to internal/audit and internal/history.
// Commands only parse flags and render results as tables, JSON, or inline
// annotated text.
package main
