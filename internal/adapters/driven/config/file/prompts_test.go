package file

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fixpath-cli/internal/core/ports/driven"
)

var testDefaults = map[string]string{
	driven.PromptDiagnosis: "You are an experienced repair technician. Answer in JSON.",
	driven.PromptDistill:   "Extract repair steps for %s. Reply %s if irrelevant.\n\n%s",
}

func TestPromptStore_ImplementsInterface(t *testing.T) {
	var _ driven.PromptStore = (*PromptStore)(nil)
}

func TestNewPromptStore_WithCustomDir(t *testing.T) {
	dir := t.TempDir()

	store, err := NewPromptStore(dir, testDefaults)

	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())
}

func TestNewPromptStore_DefaultDir(t *testing.T) {
	// Skip if we can't determine home dir
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	store, err := NewPromptStore("", testDefaults)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".fixpath", "prompts"), store.Dir())
}

func TestPromptStore_Load_CreatesDefaultFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	// Load triggers lazy init
	_, err = store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)

	// Check files were created
	files := []string{
		"diagnosis.txt",
		"distill.txt",
		"README.md",
	}
	for _, f := range files {
		path := filepath.Join(dir, f)
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected file %s to exist", f)
	}
}

func TestPromptStore_Load_ReturnsDefaultContent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDiagnosis)

	require.NoError(t, err)
	assert.Contains(t, prompt, "experienced repair technician")
	assert.Contains(t, prompt, "JSON")
}

func TestPromptStore_Load_ReturnsCustomContent(t *testing.T) {
	dir := t.TempDir()

	// Create custom prompt before store init
	customContent := "My custom prompt: %s"
	err := os.WriteFile(
		filepath.Join(dir, "diagnosis.txt"),
		[]byte(customContent),
		0600,
	)
	require.NoError(t, err)

	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDiagnosis)

	require.NoError(t, err)
	assert.Equal(t, customContent, prompt)
}

func TestPromptStore_Load_FallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	// Delete the file after init creates it
	_, _ = store.Load(driven.PromptDiagnosis) // Trigger init
	os.Remove(filepath.Join(dir, "diagnosis.txt"))
	store.Reload() // Clear cache

	// Should fall back to the default
	prompt, err := store.Load(driven.PromptDiagnosis)

	require.NoError(t, err)
	assert.Contains(t, prompt, "experienced repair technician")
}

func TestPromptStore_Load_UnknownPrompt(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	_, err = store.Load("nonexistent_prompt")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent_prompt")
}

func TestPromptStore_Load_CachesResults(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	// First load
	prompt1, err := store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)

	// Modify file on disk
	err = os.WriteFile(
		filepath.Join(dir, "diagnosis.txt"),
		[]byte("modified content"),
		0600,
	)
	require.NoError(t, err)

	// Second load should return cached value
	prompt2, err := store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}

func TestPromptStore_Reload_ClearsCache(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	// First load
	_, err = store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)

	// Modify file on disk
	modifiedContent := "modified content: %s"
	err = os.WriteFile(
		filepath.Join(dir, "diagnosis.txt"),
		[]byte(modifiedContent),
		0600,
	)
	require.NoError(t, err)

	// Reload cache
	store.Reload()

	// Should return new content
	prompt, err := store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)

	assert.Equal(t, modifiedContent, prompt)
}

func TestPromptStore_Load_ConcurrentAccess(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	const goroutines = 100
	var wg sync.WaitGroup
	wg.Add(goroutines)

	errors := make(chan error, goroutines)
	prompts := make(chan string, goroutines)

	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			prompt, err := store.Load(driven.PromptDiagnosis)
			if err != nil {
				errors <- err
				return
			}
			prompts <- prompt
		}()
	}

	wg.Wait()
	close(errors)
	close(prompts)

	// Check no errors
	for err := range errors {
		t.Errorf("unexpected error: %v", err)
	}

	// Check all prompts are identical
	var first string
	for prompt := range prompts {
		if first == "" {
			first = prompt
		} else {
			assert.Equal(t, first, prompt)
		}
	}
}

func TestPromptStore_DoesNotOverwriteExistingFiles(t *testing.T) {
	dir := t.TempDir()

	// Create custom prompt before store creation
	customContent := "pre-existing custom prompt"
	err := os.WriteFile(
		filepath.Join(dir, "diagnosis.txt"),
		[]byte(customContent),
		0600,
	)
	require.NoError(t, err)

	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	// Trigger init
	_, _ = store.Load(driven.PromptDistill)

	// Original file should be unchanged
	data, err := os.ReadFile(filepath.Join(dir, "diagnosis.txt"))
	require.NoError(t, err)
	assert.Equal(t, customContent, string(data))
}

func TestPromptStore_TrimsWhitespace(t *testing.T) {
	dir := t.TempDir()

	// Create prompt with extra whitespace
	contentWithWhitespace := "\n\n  prompt content  \n\n"
	err := os.WriteFile(
		filepath.Join(dir, "diagnosis.txt"),
		[]byte(contentWithWhitespace),
		0600,
	)
	require.NoError(t, err)

	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)

	assert.Equal(t, "prompt content", prompt)
}

func TestPromptStore_DefaultsAreCopied(t *testing.T) {
	defaults := map[string]string{driven.PromptDiagnosis: "original"}
	store, err := NewPromptStore(t.TempDir(), defaults)
	require.NoError(t, err)
	defaults[driven.PromptDiagnosis] = "mutated"

	prompt, err := store.Load(driven.PromptDiagnosis)

	require.NoError(t, err)
	assert.Equal(t, "original", prompt)
}

func TestPromptStore_Load_EmptyFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diagnosis.txt"), []byte("  \n"), 0600))
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	prompt, err := store.Load(driven.PromptDiagnosis)

	require.NoError(t, err)
	assert.Equal(t, testDefaults[driven.PromptDiagnosis], prompt)
}

func TestPromptStore_ReadmeListsPrompts(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)
	_, _ = store.Load(driven.PromptDiagnosis)

	data, err := os.ReadFile(filepath.Join(dir, "README.md"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "`diagnosis.txt`")
	assert.Contains(t, string(data), "`distill.txt`")
}

func TestPromptStore_HandlePromptEvent(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		op     fsnotify.Op
		reload bool
	}{
		{name: "write prompt", file: "diagnosis.txt", op: fsnotify.Write, reload: true},
		{name: "create prompt", file: "distill.txt", op: fsnotify.Create, reload: true},
		{name: "remove prompt", file: "diagnosis.txt", op: fsnotify.Remove, reload: true},
		{name: "rename prompt", file: "diagnosis.txt", op: fsnotify.Rename, reload: true},
		{name: "chmod ignored", file: "diagnosis.txt", op: fsnotify.Chmod},
		{name: "readme ignored", file: "README.md", op: fsnotify.Write},
		{name: "editor swap ignored", file: ".diagnosis.txt.swp", op: fsnotify.Write},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			store, err := NewPromptStore(dir, testDefaults)
			require.NoError(t, err)
			_, err = store.Load(driven.PromptDiagnosis)
			require.NoError(t, err)

			got := store.handlePromptEvent(fsnotify.Event{Name: filepath.Join(dir, tt.file), Op: tt.op})

			assert.Equal(t, tt.reload, got)
			store.mu.RLock()
			cached := len(store.cache)
			store.mu.RUnlock()
			if tt.reload {
				assert.Zero(t, cached)
			} else {
				assert.Equal(t, 1, cached)
			}
		})
	}
}

func TestPromptStore_Watch_ReloadsOnEdit(t *testing.T) {
	dir := t.TempDir()
	store, err := NewPromptStore(dir, testDefaults)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, store.Watch(ctx))

	_, err = store.Load(driven.PromptDiagnosis)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "diagnosis.txt"), []byte("edited"), 0600))

	assert.Eventually(t, func() bool {
		prompt, err := store.Load(driven.PromptDiagnosis)
		return err == nil && prompt == "edited"
	}, 2*time.Second, 20*time.Millisecond)
}

func TestPromptStore_Watch_BadDirectory(t *testing.T) {
	store, err := NewPromptStore("/invalid\x00dir", testDefaults)
	require.NoError(t, err)

	assert.Error(t, store.Watch(context.Background()))
}
