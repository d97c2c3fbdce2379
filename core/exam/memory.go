package exam

import (
	"context"
	"fmt"
	"sync"
)

// MemoryProvider serves a fixed catalogue in the order it was given.
type MemoryProvider struct {
	exams []Exam
}

var _ ContentProvider = (*MemoryProvider)(nil)

func NewMemoryProvider(exams ...Exam) *MemoryProvider {
	return &MemoryProvider{exams: append([]Exam(nil), exams...)}
}

func (p *MemoryProvider) ListExams(context.Context) ([]Summary, error) {
	summaries := make([]Summary, 0, len(p.exams))
	for _, e := range p.exams {
		summaries = append(summaries, e.Summary())
	}
	return summaries, nil
}

func (p *MemoryProvider) Exam(_ context.Context, id string) (Exam, error) {
	for _, e := range p.exams {
		if e.ID == id {
			return e, nil
		}
	}
	return Exam{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

func (p *MemoryProvider) Question(ctx context.Context, id string, index int) (Question, error) {
	e, err := p.Exam(ctx, id)
	if err != nil {
		return Question{}, err
	}
	if index < 0 || index >= len(e.Questions) {
		return Question{}, fmt.Errorf("%w: %s question %d", ErrNotFound, id, index+1)
	}
	return e.Questions[index], nil
}

// MemorySink keeps submissions in memory.
type MemorySink struct {
	mu          sync.Mutex
	submissions []Submission
}

var _ SubmissionSink = (*MemorySink)(nil)

func (s *MemorySink) Submit(_ context.Context, submission Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submissions = append(s.submissions, submission)
	return nil
}

func (s *MemorySink) Submissions() []Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Submission(nil), s.submissions...)
}
