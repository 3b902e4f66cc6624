// Package model defines the results a scan pass reports.
//
// A ScanResult summarizes one pass over a document and holds one ItemResult
// per examined item. Verdicts and modes encode as lower-case names so JSON
// reports stay readable.
package model
