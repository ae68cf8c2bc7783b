package entity

// Page is one discovered HTML file with the metadata shown in the index.
type Page struct {
	Path        string // Path relative to the root, always with forward slashes
	Folder      string // Parent folder of Path, only used for ordering
	Title       string // Never empty, falls back to Path
	Description string // Up to 100 characters plus "..." when cut
	ModDate     string // DD.MM.YYYY or empty when the timestamp is unavailable
}
