// Package main provides the entry point for the focusfeed CLI.
//
// focusfeed dims the entries of a video feed page whose titles have nothing
// to do with a short focus goal.
//
// Usage:
//
//	focusfeed goal set "I want to learn Rust programming"
//	focusfeed scan home.html --output-dir annotated/
//	focusfeed watch home.html --output live.html
//
// See --help for all available options.
package main

func main() {
	Execute()
}
