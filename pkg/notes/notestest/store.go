// Package notestest provides an in-memory note store for tests
package notestest

import (
	"context"
	"fmt"
	"sync"

	"github.com/KyleBrandon/obsidian-mcp/pkg/dto"
)

// Store records every call and serves canned data. When Err is set every call fails with it.
// Files is returned from ListNotes as is, without filtering.
type Store struct {
	mu sync.Mutex

	Files    []string
	Notes    map[string]dto.Note
	Results  []dto.Note
	Metadata map[string]map[string]any
	Err      error

	Calls  []Call
	Writes []Write
}

// Call is one recorded store call
type Call struct {
	Method string
	Args   []any
}

type Write struct {
	Path    string
	Content string
}

func NewStore() *Store {
	return &Store{
		Notes:    make(map[string]dto.Note),
		Metadata: make(map[string]map[string]any),
	}
}

// AddNote stores a note that ReadNote and GetMetadata will serve
func (s *Store) AddNote(path, content string, metadata map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Notes[path] = dto.Note{Path: path, Content: content, Metadata: metadata}
	if metadata != nil {
		s.Metadata[path] = metadata
	}
	s.Files = append(s.Files, path)
}

func (s *Store) record(method string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, Call{Method: method, Args: args})
}

// CallCount returns how many times method was called
func (s *Store) CallCount(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, c := range s.Calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// LastCall returns the most recent call to method
func (s *Store) LastCall(method string) (Call, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.Calls) - 1; i >= 0; i-- {
		if s.Calls[i].Method == method {
			return s.Calls[i], true
		}
	}
	return Call{}, false
}

func (s *Store) ListNotes(ctx context.Context, folder string) ([]string, error) {
	s.record("ListNotes", folder)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	files := make([]string, len(s.Files))
	copy(files, s.Files)
	return files, nil
}

func (s *Store) ReadNote(ctx context.Context, path string) (*dto.Note, error) {
	s.record("ReadNote", path)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.Notes[path]
	if !ok {
		return nil, fmt.Errorf("note not found: %s", path)
	}
	return &note, nil
}

func (s *Store) WriteNote(ctx context.Context, path, content string) error {
	s.record("WriteNote", path, content)
	if s.Err != nil {
		return s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.Notes[path]; !exists {
		s.Files = append(s.Files, path)
	}
	s.Notes[path] = dto.Note{Path: path, Content: content}
	s.Writes = append(s.Writes, Write{Path: path, Content: content})
	return nil
}

func (s *Store) SearchNotes(ctx context.Context, query string, contextLength int) ([]dto.Note, error) {
	s.record("SearchNotes", query, contextLength)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]dto.Note, len(s.Results))
	copy(results, s.Results)
	return results, nil
}

func (s *Store) GetMetadata(ctx context.Context, path string) (map[string]any, error) {
	s.record("GetMetadata", path)
	if s.Err != nil {
		return nil, s.Err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metadata, ok := s.Metadata[path]
	if !ok {
		return nil, fmt.Errorf("note not found: %s", path)
	}
	return metadata, nil
}
