// Package exam holds the exam content and submission types the voice screens
// work with, and the collaborator interfaces that load and store them.
package exam

import (
	"context"
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("exam not found")

type Exam struct {
	ID           string        `yaml:"id" json:"id"`
	Title        string        `yaml:"title" json:"title"`
	Instructions string        `yaml:"instructions" json:"instructions"`
	Duration     time.Duration `yaml:"duration" json:"duration"`
	Questions    []Question    `yaml:"questions" json:"questions"`
}

func (e Exam) Summary() Summary {
	return Summary{ID: e.ID, Title: e.Title, QuestionCount: len(e.Questions), Duration: e.Duration}
}

type Question struct {
	Text string `yaml:"text" json:"text"`
	// Options are the answer choices in letter order. A question without
	// options takes a dictated answer.
	Options []string `yaml:"options,omitempty" json:"options,omitempty"`
}

func (q Question) MultipleChoice() bool { return len(q.Options) > 0 }

// Choices returns the option letters, "abcd" for four options.
func (q Question) Choices() string {
	var b strings.Builder
	for i := range q.Options {
		if i >= 26 {
			break
		}
		b.WriteByte(byte('a' + i))
	}
	return b.String()
}

// OptionIndex maps an option letter to its index in Options.
func (q Question) OptionIndex(letter string) (int, bool) {
	letter = strings.ToLower(strings.TrimSpace(letter))
	if len(letter) != 1 {
		return 0, false
	}
	index := int(letter[0] - 'a')
	if index < 0 || index >= len(q.Options) {
		return 0, false
	}
	return index, true
}

// Summary is the catalogue entry of an exam.
type Summary struct {
	ID            string
	Title         string
	QuestionCount int
	Duration      time.Duration
}

type Answer struct {
	// Option is the upper-case letter picked for a multiple-choice question.
	Option string `json:"option,omitempty"`
	// Text is the dictated answer for a free-text question.
	Text string `json:"text,omitempty"`
}

func (a Answer) IsZero() bool { return a.Option == "" && a.Text == "" }

type SubmitReason string

const (
	SubmitReasonUser    SubmitReason = "user"
	SubmitReasonTimeout SubmitReason = "timeout"
)

type Submission struct {
	ExamID    string `json:"exam_id"`
	SessionID string `json:"session_id"`
	// Answers is keyed by zero-based question index.
	Answers     map[int]Answer `json:"answers"`
	Reason      SubmitReason   `json:"reason"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// ContentProvider is the read-only exam catalogue.
type ContentProvider interface {
	ListExams(ctx context.Context) ([]Summary, error)
	Exam(ctx context.Context, id string) (Exam, error)
	Question(ctx context.Context, id string, index int) (Question, error)
}

// SubmissionSink accepts finished exams. What happens to them afterwards is
// up to the sink.
type SubmissionSink interface {
	Submit(ctx context.Context, submission Submission) error
}
