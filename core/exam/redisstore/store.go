// Package redisstore keeps exam submissions in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam"
)

const scopeName = "github.com/POWELL-MWEEMBA/Exam-Voice-Assitance/core/exam/redisstore"

var logger = otelslog.NewLogger(scopeName)

const defaultPrefix = "examvoice:"

// Client is the part of *redis.Client the store uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Store is an [exam.SubmissionSink]. Every submission is stored as JSON under
// its own key and indexed in a per-exam list.
type Store struct {
	client Client
	prefix string
	ttl    time.Duration
}

var _ exam.SubmissionSink = (*Store)(nil)

type Option func(*Store)

func WithKeyPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL expires stored submissions. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl >= 0 {
			s.ttl = ttl
		}
	}
}

func New(client Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: defaultPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ConnectOptions struct {
	Addr     string
	Password string
	DB       int
}

// Connect opens a Redis client and checks it answers. The caller owns the
// returned client and closes it.
func Connect(ctx context.Context, options ConnectOptions, opts ...Option) (*Store, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to connect to redis at %s: %w", options.Addr, err), client.Close())
	}
	logger.Info("connected to redis", "addr", options.Addr, "db", options.DB)

	return New(client, opts...), client, nil
}

func (s *Store) submissionKey(submission exam.Submission) string {
	return fmt.Sprintf("%ssubmission:%s:%s", s.prefix, submission.ExamID, submission.SessionID)
}

func (s *Store) indexKey(examID string) string {
	return fmt.Sprintf("%ssubmissions:%s", s.prefix, examID)
}

func (s *Store) Submit(ctx context.Context, submission exam.Submission) error {
	if submission.ExamID == "" || submission.SessionID == "" {
		return fmt.Errorf("submission needs an exam and a session id")
	}
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = time.Now().UTC()
	}

	data, err := json.Marshal(submission)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	key := s.submissionKey(submission)
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store submission %s: %w", key, err)
	}
	if err := s.client.RPush(ctx, s.indexKey(submission.ExamID), key).Err(); err != nil {
		return fmt.Errorf("failed to index submission %s: %w", key, err)
	}

	logger.Debug("stored submission", "key", key, "answers", len(submission.Answers), "reason", string(submission.Reason))
	return nil
}

// Submissions returns the stored submissions of an exam in submission order.
// Expired entries are skipped.
func (s *Store) Submissions(ctx context.Context, examID string) ([]exam.Submission, error) {
	keys, err := s.client.LRange(ctx, s.indexKey(examID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions for %s: %w", examID, err)
	}

	submissions := make([]exam.Submission, 0, len(keys))
	for _, key := range keys {
		data, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		} else if err != nil {
			return nil, fmt.Errorf("failed to load submission %s: %w", key, err)
		}

		var submission exam.Submission
		if err := json.Unmarshal(data, &submission); err != nil {
			return nil, fmt.Errorf("failed to decode submission %s: %w", key, err)
		}
		submissions = append(submissions, submission)
	}
	return submissions, nil
}
