// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI renders one track acquisition: a gradient progress bar from
// charmbracelet/bubbles tracks the staged progress stream, with the current
// stage and status message below it. When the engine finishes, the artifact
// is written to the output directory and the final state (saved path or
// failure) is displayed before the program exits.
//
// The [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress events flow through a channel from the download engine, providing non-blocking status reporting.
package ui
