// Package dom holds the host document that focusfeed inspects.
//
// A Document wraps an HTML tree parsed with golang.org/x/net/html. The host
// (whatever renders the feed) mutates it through Append, Reload, Remove and
// Navigate; the engine reads and annotates it through Update. Every access is
// serialized by the document's mutex, so a scan always sees one consistent
// tree and host mutations wait for a running scan to finish.
//
// Insertions (Append, Reload) are announced to observers through coalescing
// signal channels. Engine-side changes made inside Update are not announced,
// so annotating items never schedules another scan.
//
// Selectors are CSS selectors compiled with github.com/andybalholm/cascadia.
package dom
