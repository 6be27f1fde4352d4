package services

import (
	"io/fs"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"devlens/internal/common"
	"devlens/internal/interfaces"

	"github.com/gobwas/glob"
	"github.com/ternarybob/arbor"
)

// previewLimit bounds the plain-text preview carried on a doc sample.
const previewLimit = 160

// previewReadSize is how much of a doc file is read for its preview.
const previewReadSize = 4096

type sampler struct {
	config       *common.SamplerConfig
	codeGlobs    []glob.Glob
	testGlobs    []glob.Glob
	docGlobs     []glob.Glob
	excludedDirs map[string]bool
	logger       arbor.ILogger
}

// NewSampler compiles the configured category patterns. Invalid patterns
// fail construction rather than being silently dropped.
func NewSampler(config *common.SamplerConfig, logger arbor.ILogger) (interfaces.Sampler, error) {
	s := &sampler{
		config:       config,
		excludedDirs: make(map[string]bool, len(config.ExcludeDirs)),
		logger:       logger,
	}

	for _, dir := range config.ExcludeDirs {
		s.excludedDirs[dir] = true
	}

	var err error
	if s.codeGlobs, err = compileGlobs(config.CodePatterns); err != nil {
		return nil, common.NewSamplerError("bad_pattern", "invalid code pattern").WithCause(err)
	}
	if s.testGlobs, err = compileGlobs(config.TestPatterns); err != nil {
		return nil, common.NewSamplerError("bad_pattern", "invalid test pattern").WithCause(err)
	}
	if s.docGlobs, err = compileGlobs(config.DocPatterns); err != nil {
		return nil, common.NewSamplerError("bad_pattern", "invalid doc pattern").WithCause(err)
	}

	return s, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Sample walks the configured root, classifies files into code, tests
// and docs, and returns a random pick of at most max_per_category files
// per category. Test patterns win over code patterns so *_test.go files
// land in the tests tree.
func (s *sampler) Sample() (*interfaces.SampleSet, error) {
	var code, tests, docs []interfaces.FileSample

	err := filepath.WalkDir(s.config.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if s.excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(s.config.Root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		switch {
		case matchesAny(s.testGlobs, rel):
			tests = append(tests, s.fileSample(path, rel, interfaces.CategoryTests, d))
		case matchesAny(s.codeGlobs, rel):
			code = append(code, s.fileSample(path, rel, interfaces.CategoryCode, d))
		case matchesAny(s.docGlobs, rel):
			docs = append(docs, s.fileSample(path, rel, interfaces.CategoryDocs, d))
		}
		return nil
	})
	if err != nil {
		return nil, common.NewSamplerError("walk_failed", "failed to walk workspace").
			WithContext("root", s.config.Root).
			WithCause(err)
	}

	limit := s.config.MaxPerCategory

	set := &interfaces.SampleSet{
		Code:  pickRandom(code, limit),
		Tests: pickRandom(tests, limit),
		Docs:  pickRandom(docs, limit),
	}

	s.logger.Debug().
		Int("code", len(set.Code)).
		Int("tests", len(set.Tests)).
		Int("docs", len(set.Docs)).
		Msg("Workspace sampled")

	return set, nil
}

func matchesAny(globs []glob.Glob, rel string) bool {
	// Patterns like **.go should also match top-level files.
	base := filepath.Base(rel)
	for _, g := range globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func (s *sampler) fileSample(path, rel string, category interfaces.FileCategory, d fs.DirEntry) interfaces.FileSample {
	sample := interfaces.FileSample{
		Path:     rel,
		Category: category,
	}

	if info, err := d.Info(); err == nil {
		sample.SizeKB = info.Size() / 1024
	}

	if category == interfaces.CategoryDocs {
		sample.Preview = s.docPreview(path)
	}

	return sample
}

// docPreview reads the head of a doc file and flattens it to a short
// plain-text preview. HTML files are run through the HTML text extractor
// first so markup does not leak into the dashboard.
func (s *sampler) docPreview(path string) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()

	buf := make([]byte, previewReadSize)
	n, _ := file.Read(buf)
	text := string(buf[:n])

	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		text = common.ExtractHTMLText(text)
	}

	text = collapseWhitespace(text)
	return truncateText(text, previewLimit)
}

// pickRandom shuffles and keeps at most limit samples.
func pickRandom(samples []interfaces.FileSample, limit int) []interfaces.FileSample {
	rand.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	if len(samples) > limit {
		samples = samples[:limit]
	}
	return samples
}
