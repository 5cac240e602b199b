package services

import (
	"context"
	"errors"
)

// ErrTranscriptionFailed wraps a transcriber failure during capture. The
// engine treats it as a degradation, not a hard stop: a capture without a
// transcript is still a capture.
var ErrTranscriptionFailed = errors.New("transcription failed")

// TranscriptionService turns captured media into text. Implemented outside
// the core (speech-to-text provider).
type TranscriptionService interface {
	Transcribe(ctx context.Context, mediaHandle string) (string, error)
}

// PromptAnswer pairs a prompt with the user's transcribed answer.
type PromptAnswer struct {
	Prompt string
	Answer string
}

// StructuredInsight is the analysis result produced from a set of
// prompt/answer pairs.
type StructuredInsight struct {
	Summary    string
	Highlights []string
}

// InsightService produces structured insight from transcripts. Implemented
// outside the core (text-analysis provider).
type InsightService interface {
	Analyze(ctx context.Context, answers []PromptAnswer) (StructuredInsight, error)
}

// EntitlementService gates premium resurfacing features.
type EntitlementService interface {
	IsEntitled(ctx context.Context) bool
}
