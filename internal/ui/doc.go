// Package ui renders command lifecycle events for people reading a terminal
// while structured telemetry keeps flowing through the diagnostic logger.
package ui
