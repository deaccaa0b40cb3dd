package services

import (
	"fmt"
	"strings"
)

// ProgressPolicy decides how reading and quiz results turn into a percentage.
type ProgressPolicy string

const (
	// PolicyQuizGates: a read document with no quiz is done; with a quiz it is
	// half done until the quiz is submitted, whatever the score.
	PolicyQuizGates ProgressPolicy = "quiz_gates"
	// PolicyScoreBlend: reading is worth 50, the quiz score fills the other half.
	PolicyScoreBlend ProgressPolicy = "score_blend"

	DefaultProgressPolicy = PolicyQuizGates
)

func ParseProgressPolicy(raw string) (ProgressPolicy, error) {
	switch p := ProgressPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return DefaultProgressPolicy, nil
	case PolicyQuizGates, PolicyScoreBlend:
		return p, nil
	default:
		return "", fmt.Errorf("unknown progress policy %q (want %s or %s)", raw, PolicyQuizGates, PolicyScoreBlend)
	}
}

// ProgressState is everything a percentage may depend on.
type ProgressState struct {
	HasRead       bool
	HasQuiz       bool
	QuizCompleted bool
	QuizScore     float64
}

// Percentage is a pure function of state, clamped to [0, 100].
func (p ProgressPolicy) Percentage(st ProgressState) float64 {
	var pct float64
	switch p {
	case PolicyScoreBlend:
		if st.HasRead {
			pct += 50
		}
		if st.QuizCompleted {
			pct += st.QuizScore / 2
		}
	default:
		switch {
		case st.QuizCompleted:
			pct = 100
		case st.HasRead && !st.HasQuiz:
			pct = 100
		case st.HasRead:
			pct = 50
		}
	}
	return clampPercent(pct)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
