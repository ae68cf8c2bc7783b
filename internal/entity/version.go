package entity

import (
	"fmt"
	"time"
)

type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// VersionState is the sidecar record kept between runs.
type VersionState struct {
	LastMinor   int       `yaml:"last_minor" json:"last_minor"`
	EntryCount  int       `yaml:"entry_count" json:"entry_count"`
	Version     string    `yaml:"version" json:"version"`
	ContentHash string    `yaml:"content_hash" json:"content_hash"`
	BuildID     string    `yaml:"build_id" json:"build_id"`
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
}

type BuildResult struct {
	BuildID    string  `json:"build_id"`
	OutputFile string  `json:"output_file"`
	Version    Version `json:"version"`
	EntryCount int     `json:"entry_count"`
	Pages      []*Page `json:"-"`
}
