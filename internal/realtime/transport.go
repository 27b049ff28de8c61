// Package realtime adapts voice-capable transports to the evaluation
// pipeline. Audio questions must go through a transport that can consume
// audio; the transport always yields a text answer, plus the input transcript
// when transcription happened.
package realtime

import (
	"context"
	"errors"
	"time"
)

type SessionRequest struct {
	SystemPrompt string
	Context      string

	// Exactly one of QuestionText / QuestionAudioPath drives the session.
	QuestionText      string
	QuestionAudioPath string
}

type SessionResult struct {
	Answer string
	// InputTranscript is set when the question arrived as audio. Scoring uses
	// it in place of the audio-path placeholder.
	InputTranscript string
}

type Transport interface {
	Generate(ctx context.Context, req *SessionRequest) (*SessionResult, error)
}

// Config times the two session phases. Session setup (connection plus
// transcription of the input) runs under ConnectTimeout; collecting the
// response runs under the shorter ResponseTimeout.
type Config struct {
	TranscriptionModel string
	ConnectTimeout     time.Duration
	ResponseTimeout    time.Duration
}

var (
	errNoQuestion   = errors.New("realtime: neither question text nor audio path provided")
	errBothQuestion = errors.New("realtime: both question text and audio path provided")
)

func validate(req *SessionRequest) error {
	if req == nil {
		return errors.New("realtime: nil request")
	}
	hasText := req.QuestionText != ""
	hasAudio := req.QuestionAudioPath != ""
	switch {
	case !hasText && !hasAudio:
		return errNoQuestion
	case hasText && hasAudio:
		return errBothQuestion
	}
	return nil
}
