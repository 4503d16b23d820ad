// Package reviewfile loads the JSON review result written by the analysis engine.
package reviewfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ericfisherdev/reviewcerberus/internal/domain/model"
)

const maxConfidence = 10

// ErrInvalidReview marks a review result that parsed as JSON but has the wrong shape.
var ErrInvalidReview = errors.New("invalid review result")

// Load reads and validates the review result at path.
func Load(path string) (model.ReviewOutput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ReviewOutput{}, fmt.Errorf("reading review file %s: %w", path, err)
	}

	output, err := Parse(data)
	if err != nil {
		return model.ReviewOutput{}, fmt.Errorf("review file %s: %w", path, err)
	}
	return output, nil
}

// Parse decodes a review result and rejects anything that cannot be rendered
// faithfully. A partial result is never returned.
func Parse(data []byte) (model.ReviewOutput, error) {
	var output model.ReviewOutput
	if err := json.Unmarshal(data, &output); err != nil {
		return model.ReviewOutput{}, fmt.Errorf("decoding review JSON: %w", err)
	}

	for i, issue := range output.Issues {
		if err := validateIssue(issue); err != nil {
			return model.ReviewOutput{}, fmt.Errorf("issue %d: %w", i+1, err)
		}
	}

	if output.Issues == nil {
		output.Issues = []model.ReviewIssue{}
	}
	return output, nil
}

func validateIssue(issue model.ReviewIssue) error {
	if issue.Title == "" {
		return fmt.Errorf("%w: missing title", ErrInvalidReview)
	}
	if !issue.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidReview, issue.Severity)
	}
	if !issue.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidReview, issue.Category)
	}
	if c := issue.Confidence; c != nil && (*c < 0 || *c > maxConfidence) {
		return fmt.Errorf("%w: confidence %d outside 0..%d", ErrInvalidReview, *c, maxConfidence)
	}
	return nil
}
