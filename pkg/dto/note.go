package dto

// Note is a vault note as returned by the Local REST API
type Note struct {
	Path     string         `json:"path"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// ServerInfo is the status document served at the API root
type ServerInfo struct {
	Authenticated bool           `json:"authenticated"`
	OK            string         `json:"ok"`
	Service       string         `json:"service"`
	Versions      ServerVersions `json:"versions"`
}

type ServerVersions struct {
	Obsidian string `json:"obsidian"`
	Self     string `json:"self"`
}
