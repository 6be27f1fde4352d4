package interfaces

// FileCategory classifies a sampled workspace file.
type FileCategory string

const (
	CategoryCode  FileCategory = "code"
	CategoryTests FileCategory = "tests"
	CategoryDocs  FileCategory = "docs"
)

// FileSample is a single randomly picked workspace file.
type FileSample struct {
	Path     string       `json:"path"`
	Category FileCategory `json:"category"`
	SizeKB   int64        `json:"size_kb"`
	Preview  string       `json:"preview,omitempty"`
}

// SampleSet groups one sampling run's picks by category.
type SampleSet struct {
	Code  []FileSample `json:"code"`
	Tests []FileSample `json:"tests"`
	Docs  []FileSample `json:"docs"`
}

// Sampler randomly samples workspace files into code, tests and docs
// for the dashboard's sidebar trees.
type Sampler interface {
	Sample() (*SampleSet, error)
}
