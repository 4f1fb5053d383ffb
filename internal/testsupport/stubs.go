package testsupport

import (
	"context"
	"sync"
)

// Prompt records one call made to a StubCompleter.
type Prompt struct {
	System    string
	User      string
	MaxTokens int
}

// StubCompleter returns a fixed reply and records every prompt.
type StubCompleter struct {
	Reply string
	Err   error

	mu    sync.Mutex
	calls []Prompt
}

// Complete implements the completion collaborator.
func (s *StubCompleter) Complete(_ context.Context, system, user string, maxTokens int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Prompt{System: system, User: user, MaxTokens: maxTokens})
	if s.Err != nil {
		return "", s.Err
	}
	return s.Reply, nil
}

// Calls returns a copy of the recorded prompts.
func (s *StubCompleter) Calls() []Prompt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Prompt(nil), s.calls...)
}

// StubCaptioner returns a fixed caption and counts calls.
type StubCaptioner struct {
	Text string
	Err  error

	mu    sync.Mutex
	count int
	last  []byte
}

// Caption implements the captioning collaborator.
func (s *StubCaptioner) Caption(_ context.Context, image []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	s.last = append([]byte(nil), image...)
	if s.Err != nil {
		return "", s.Err
	}
	return s.Text, nil
}

// Count returns how many times Caption was called.
func (s *StubCaptioner) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Last returns the image bytes passed to the most recent call.
func (s *StubCaptioner) Last() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.last...)
}
