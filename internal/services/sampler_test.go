package services

import (
	"os"
	"path/filepath"
	"testing"

	"devlens/internal/common"
	"devlens/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func testSamplerConfig(root string) *common.SamplerConfig {
	return &common.SamplerConfig{
		Root:           root,
		MaxPerCategory: 10,
		CodePatterns:   []string{"**.go", "**.ts"},
		TestPatterns:   []string{"**_test.go"},
		DocPatterns:    []string{"**.md", "**.html"},
		ExcludeDirs:    []string{"node_modules", ".git"},
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func categoryPaths(samples []interfaces.FileSample) []string {
	paths := make([]string, 0, len(samples))
	for _, s := range samples {
		paths = append(paths, s.Path)
	}
	return paths
}

func Test_Sampler_ClassifiesByCategory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "main.go", "package main")
	writeFile(t, root, "sub/handler.ts", "export {}")
	writeFile(t, root, "main_test.go", "package main")
	writeFile(t, root, "README.md", "# Readme\n\nSome   docs here.")
	writeFile(t, root, "node_modules/skip.go", "package skip")

	s, err := NewSampler(testSamplerConfig(root), arbor.NewLogger())
	require.NoError(t, err)

	set, err := s.Sample()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"main.go", "sub/handler.ts"}, categoryPaths(set.Code))
	assert.ElementsMatch(t, []string{"main_test.go"}, categoryPaths(set.Tests))
	assert.ElementsMatch(t, []string{"README.md"}, categoryPaths(set.Docs))
}

func Test_Sampler_TestPatternWinsOverCode(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "pkg/thing_test.go", "package pkg")

	s, err := NewSampler(testSamplerConfig(root), arbor.NewLogger())
	require.NoError(t, err)

	set, err := s.Sample()
	require.NoError(t, err)

	assert.Empty(t, set.Code)
	require.Len(t, set.Tests, 1)
	assert.Equal(t, interfaces.CategoryTests, set.Tests[0].Category)
}

func Test_Sampler_BoundsPerCategory(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	for i := 0; i < 25; i++ {
		writeFile(t, root, filepath.Join("src", string(rune('a'+i%26))+"file"+string(rune('0'+i%10))+".go"), "package src")
	}

	cfg := testSamplerConfig(root)
	cfg.MaxPerCategory = 5

	s, err := NewSampler(cfg, arbor.NewLogger())
	require.NoError(t, err)

	set, err := s.Sample()
	require.NoError(t, err)

	assert.LessOrEqual(t, len(set.Code), 5)
}

func Test_Sampler_DocPreviewNormalized(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "guide.md", "Getting   started\n\nwith\tdevlens")

	s, err := NewSampler(testSamplerConfig(root), arbor.NewLogger())
	require.NoError(t, err)

	set, err := s.Sample()
	require.NoError(t, err)

	require.Len(t, set.Docs, 1)
	assert.Equal(t, "Getting started with devlens", set.Docs[0].Preview)
}

func Test_Sampler_HTMLPreviewStripsMarkup(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeFile(t, root, "docs/index.html",
		"<html><head><style>.x{color:red}</style></head><body><h1>API Guide</h1><script>var tracker=1;</script><p>Endpoints below</p></body></html>")

	s, err := NewSampler(testSamplerConfig(root), arbor.NewLogger())
	require.NoError(t, err)

	set, err := s.Sample()
	require.NoError(t, err)

	require.Len(t, set.Docs, 1)
	preview := set.Docs[0].Preview
	assert.Contains(t, preview, "API Guide")
	assert.Contains(t, preview, "Endpoints below")
	assert.NotContains(t, preview, "tracker")
	assert.NotContains(t, preview, "color:red")
}

func Test_NewSampler_RejectsInvalidPattern(t *testing.T) {
	t.Parallel()

	cfg := testSamplerConfig(t.TempDir())
	cfg.CodePatterns = []string{"[unclosed"}

	_, err := NewSampler(cfg, arbor.NewLogger())
	assert.Error(t, err)
}
