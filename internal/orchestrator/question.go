package orchestrator

import (
	"errors"
	"fmt"

	"github.com/stellarlinkco/qa-eval/internal/store"
)

// QuestionKind selects the generation path for a case.
type QuestionKind int

const (
	KindText QuestionKind = iota
	KindAudio
	KindImage
)

func (k QuestionKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindAudio:
		return "audio"
	case KindImage:
		return "image"
	default:
		return "unknown"
	}
}

// Question is a case's question content resolved to a single modality.
type Question struct {
	Kind QuestionKind
	Text string // set for KindText
	Path string // set for KindAudio / KindImage
}

var errNoQuestionContent = errors.New("orchestrator: test case has no question content")

// ResolveQuestion picks the case's modality. Text wins over audio, audio over
// image, matching the generation paths' capability order.
func ResolveQuestion(tc *store.TestCase) (Question, error) {
	if tc == nil {
		return Question{}, errors.New("orchestrator: nil test case")
	}
	switch {
	case tc.QuestionText != "":
		return Question{Kind: KindText, Text: tc.QuestionText}, nil
	case tc.QuestionAudioPath != "":
		return Question{Kind: KindAudio, Path: tc.QuestionAudioPath}, nil
	case tc.QuestionImagePath != "":
		return Question{Kind: KindImage, Path: tc.QuestionImagePath}, nil
	default:
		return Question{}, errNoQuestionContent
	}
}

// ScoringText is the textual stand-in for the question used by the scorers.
// Audio cases are superseded by the transcript when transcription happened.
func (q Question) ScoringText() string {
	switch q.Kind {
	case KindAudio:
		return fmt.Sprintf("[Audio: %s]", q.Path)
	case KindImage:
		return fmt.Sprintf("[Image: %s]", q.Path)
	default:
		return q.Text
	}
}
