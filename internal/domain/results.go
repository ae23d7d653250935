package domain

// PaperAdded describes a paper that was indexed.
type PaperAdded struct {
	ID         string   `json:"id"`
	FileName   string   `json:"file_name"`
	FilePath   string   `json:"file_path"`
	TextLength int      `json:"text_length"`
	Topics     []string `json:"topics,omitempty"`
}

// ImageAdded describes an image that was indexed.
type ImageAdded struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

// PaperResult is a display record for a paper search hit.
type PaperResult struct {
	FileName string   `json:"file_name"`
	FilePath string   `json:"file_path"`
	Topics   string   `json:"topics,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
	Snippet  string   `json:"snippet"`
}

// ImageResult is a display record for an image search hit.
type ImageResult struct {
	FileName string   `json:"file_name"`
	FilePath string   `json:"file_path"`
	FileSize int64    `json:"file_size,omitempty"`
	Distance *float64 `json:"distance,omitempty"`
}

// Similarity converts a cosine distance into the score shown to users.
func Similarity(distance *float64) (float64, bool) {
	if distance == nil {
		return 0, false
	}
	return 1 - *distance, true
}

// BatchFailure records one item that failed inside a batch.
type BatchFailure struct {
	Path string
	Err  error
}

// BatchReport summarizes a batch run.
type BatchReport struct {
	// Found is the number of candidate files enumerated.
	Found int
	// Skipped counts candidates already present in the index.
	Skipped int
	// Processed is the number of files passed to the single-item add.
	Processed int
	Succeeded int
	Failures  []BatchFailure
}
