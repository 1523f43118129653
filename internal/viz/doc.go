// Package viz renders simulation results in the terminal.
//
//   - [DiameterChart], [ExposureChart]: asciigraph line charts with reference lines
//   - [Summary], [CompareTable]: lipgloss panels for one or several runs
//   - [LiveModel]: Bubble Tea playback of a run as it is integrated
//
// # Key Bindings
//
//	Space - Pause/Resume playback
//	+/-   - Change playback speed
//	Q     - Quit
//
// Playback only reads the run; it never alters doses or parameters.
package viz
