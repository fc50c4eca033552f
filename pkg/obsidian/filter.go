package obsidian

import "strings"

const noteExtension = ".md"

// FilterNotes keeps the paths ending in .md and, when folder is set, starting with folder.
//
// The folder match is a plain string prefix, so "folder" also matches "folder2/x.md".
func FilterNotes(paths []string, folder string) []string {
	notes := make([]string, 0, len(paths))
	for _, p := range paths {
		if folder != "" && !strings.HasPrefix(p, folder) {
			continue
		}
		if !strings.HasSuffix(p, noteExtension) {
			continue
		}
		notes = append(notes, p)
	}

	return notes
}
