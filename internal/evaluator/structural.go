package evaluator

import (
	"bytes"
	"encoding/json"

	"github.com/praxislab/praxis-api/internal/domain"
)

// structuralStrategy handles multiple-choice, drag-and-drop, and any type
// without a specialized evaluator. Answers match when their canonical JSON
// forms are equal; canonicalization makes object-key order irrelevant.
type structuralStrategy struct{}

func (structuralStrategy) Evaluate(ex *domain.Exercise, answer []byte) Result {
	if structurallyEqual(answer, ex.CorrectAnswer) {
		return Result{Correct: true, Feedback: feedbackCorrect}
	}
	return Result{Correct: false, Feedback: feedbackIncorrect}
}

// structurallyEqual reports whether two JSON documents are equal after
// canonicalization. If either side fails to canonicalize (not valid JSON,
// or contains values json cannot re-encode), it falls back to direct byte
// comparison of the trimmed input rather than failing.
func structurallyEqual(a, b []byte) bool {
	ca, okA := canonicalize(a)
	cb, okB := canonicalize(b)
	if okA && okB {
		return bytes.Equal(ca, cb)
	}
	return bytes.Equal(bytes.TrimSpace(a), bytes.TrimSpace(b))
}

// canonicalize round-trips a JSON document through encoding/json, which
// sorts object keys and normalizes whitespace.
func canonicalize(raw []byte) ([]byte, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}

	out, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return out, true
}
