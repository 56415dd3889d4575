// Package urls provides centralized constants for documentation and
// specification URLs referenced from CLI output and troubleshooting hints.
//
// Keeping them in one place avoids stale links scattered across commands.
package urls
