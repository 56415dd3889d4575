// Package tui implements the interactive terminal screens for the
// airscan-discover tool.
//
// The watch screen renders a live view of the device table: it repeatedly
// snapshots the manager's ready devices and redraws them as cards, showing
// a spinner while the initial discovery sweep is still settling.
//
// Built on Bubble Tea with Bubbles components (spinner, key bindings, help)
// and Lip Gloss styling. Styles and the color palette are shared through
// styles.go so any future screens stay visually consistent.
package tui
