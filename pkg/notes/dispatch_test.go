package notes

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/KyleBrandon/obsidian-mcp/pkg/notes/notestest"
	"github.com/mark3labs/mcp-go/mcp"
)

type fakeTool struct {
	name    string
	execute func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)
}

func (f *fakeTool) Definition() mcp.Tool {
	return mcp.NewTool(f.name, mcp.WithDescription("fake "+f.name))
}

func (f *fakeTool) Execute(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error) {
	return f.execute(ctx, args)
}

func TestDispatcher_UnknownTool(t *testing.T) {
	d := NewDispatcher(NewToolRegistry(notestest.NewStore(), false))

	result := d.Invoke(context.Background(), "nope", map[string]any{})
	if !result.IsError {
		t.Fatal("expected an error result for an unknown tool")
	}
	if text := resultText(t, result); text != "Error: unknown tool: nope" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "boom", execute: func(context.Context, map[string]any) (*mcp.CallToolResult, error) {
		panic("kaboom")
	}})

	result := NewDispatcher(r).Invoke(context.Background(), "boom", nil)
	if !result.IsError {
		t.Fatal("expected a panic to become an error result")
	}
	if text := resultText(t, result); !strings.Contains(text, "kaboom") {
		t.Errorf("error should carry the panic value, got %q", text)
	}
}

func TestDispatcher_NilResult(t *testing.T) {
	r := NewRegistry()
	r.Register(&fakeTool{name: "empty", execute: func(context.Context, map[string]any) (*mcp.CallToolResult, error) {
		return nil, nil
	}})

	result := NewDispatcher(r).Invoke(context.Background(), "empty", nil)
	if !result.IsError {
		t.Fatal("expected a missing result to be reported as an error")
	}
}

func TestDispatcher_NilArgumentsBecomeEmpty(t *testing.T) {
	var got map[string]any
	r := NewRegistry()
	r.Register(&fakeTool{name: "args", execute: func(_ context.Context, args map[string]any) (*mcp.CallToolResult, error) {
		got = args
		return textResult("ok"), nil
	}})

	NewDispatcher(r).Invoke(context.Background(), "args", nil)
	if got == nil {
		t.Error("tool should receive an empty map, not nil")
	}
}

func TestDispatcher_InvalidArgumentType(t *testing.T) {
	store := notestest.NewStore()
	d := NewDispatcher(NewToolRegistry(store, false))

	result := d.Invoke(context.Background(), "readNote", map[string]any{"path": 42})
	if !result.IsError {
		t.Fatal("expected a non-string path to fail")
	}
	if text := resultText(t, result); !strings.HasPrefix(text, "Error: invalid arguments for readNote") {
		t.Errorf("unexpected text: %q", text)
	}
	if store.CallCount("ReadNote") != 0 {
		t.Error("store must not be called when validation fails")
	}
}

func TestRegistry_ReplaceKeepsPosition(t *testing.T) {
	ok := func(text string) func(context.Context, map[string]any) (*mcp.CallToolResult, error) {
		return func(context.Context, map[string]any) (*mcp.CallToolResult, error) {
			return textResult(text), nil
		}
	}

	r := NewRegistry()
	r.Register(&fakeTool{name: "a", execute: ok("first")})
	r.Register(&fakeTool{name: "b", execute: ok("b")})
	r.Register(&fakeTool{name: "a", execute: ok("second")})

	names := r.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("names = %v, want [a b]", names)
	}

	result := NewDispatcher(r).Invoke(context.Background(), "a", nil)
	if text := resultText(t, result); text != "second" {
		t.Errorf("expected the replacement to run, got %q", text)
	}
}

func TestRegistry_DefinitionNameMatchesKey(t *testing.T) {
	r := NewToolRegistry(notestest.NewStore(), false)

	for _, name := range r.Names() {
		tool, ok := r.Get(name)
		if !ok {
			t.Fatalf("tool %s listed but not found", name)
		}
		if tool.Definition().Name != name {
			t.Errorf("tool registered as %s reports name %s", name, tool.Definition().Name)
		}
	}

	if len(r.List()) != len(r.Names()) {
		t.Error("List and Names disagree")
	}
}

func TestDispatcher_ConcurrentInvocations(t *testing.T) {
	store := notestest.NewStore()
	for i := range 10 {
		store.AddNote(fmt.Sprintf("note%d.md", i), fmt.Sprintf("content %d", i), nil)
	}
	d := NewDispatcher(NewToolRegistry(store, false))

	var wg sync.WaitGroup
	errs := make(chan string, 50)
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			path := fmt.Sprintf("note%d.md", i%10)
			result := d.Invoke(context.Background(), "readNote", map[string]any{"path": path})
			if result.IsError {
				errs <- fmt.Sprintf("%s: unexpected error", path)
				return
			}
			want := fmt.Sprintf("content %d", i%10)
			if got := result.Content[0].(mcp.TextContent).Text; got != want {
				errs <- fmt.Sprintf("%s: got %q, want %q", path, got, want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
	if n := store.CallCount("ReadNote"); n != 50 {
		t.Errorf("expected 50 store reads, got %d", n)
	}
}

func TestDispatcher_ListCapabilitiesIsStable(t *testing.T) {
	d := NewDispatcher(NewToolRegistry(notestest.NewStore(), false))

	first := d.ListCapabilities()
	second := d.ListCapabilities()

	if len(first) != 5 || len(first) != len(second) {
		t.Fatalf("unexpected capability counts: %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Name != second[i].Name || first[i].Description != second[i].Description {
			t.Errorf("capability %d changed between calls: %s vs %s", i, first[i].Name, second[i].Name)
		}
	}
}
