package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const feedHTML = `<html><head><link rel="canonical" href="https://www.youtube.com/"></head><body>
<div id="contents">
  <ytd-rich-item-renderer id="a"><ytd-thumbnail></ytd-thumbnail><a id="video-title">Rust ownership explained</a></ytd-rich-item-renderer>
  <ytd-rich-item-renderer id="b"><ytd-thumbnail></ytd-thumbnail><a id="video-title">Cute cat compilation</a></ytd-rich-item-renderer>
  <ytd-video-renderer id="c"><a id="video-title">Learning Rust and Go programming</a></ytd-video-renderer>
</div>
</body></html>`

// result holds the output of one command execution.
type result struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args and a private data directory.
func execute(t *testing.T, dataDir, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args, "--data-dir", dataDir))

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeFeed writes the test feed page into dir and returns its path.
func writeFeed(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(feedHTML), 0600); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}
	return path
}
