// Package watch provides the trigger primitives the engine loop uses to
// decide when to rescan: a cancel-and-replace debounce timer and an address
// poller for client-side navigation.
//
// Neither type starts goroutines or is safe for concurrent use. Both are
// owned by the single loop goroutine that selects on their channels.
package watch
