// Package config holds focusfeed runtime options: the selectors that locate
// feed items, their titles and thumbnails, the engine's timing, and report
// preferences for the CLI.
package config
