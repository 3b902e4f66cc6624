package config

// File is the structure of the .focusfeed configuration file. Zero values
// leave the corresponding default in place.
type File struct {
	ItemSelectors      []string `yaml:"itemSelectors,omitempty"`
	TitleSelectors     []string `yaml:"titleSelectors,omitempty"`
	ThumbnailSelectors []string `yaml:"thumbnailSelectors,omitempty"`
	BadgeText          string   `yaml:"badgeText,omitempty"`
	DebounceMs         int      `yaml:"debounceMs,omitempty"`
	PollMs             int      `yaml:"pollMs,omitempty"`
	FetchTimeoutMs     int      `yaml:"fetchTimeoutMs,omitempty"`
	DataDir            string   `yaml:"dataDir,omitempty"`
}
