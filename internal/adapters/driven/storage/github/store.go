package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// DefaultCommitMessage is used for commits that replace a document.
const DefaultCommitMessage = "Update arrivals history"

// Store keeps history documents as JSON files in a GitHub repository.
// The key is the file path within the repository.
//
// The contents API requires the current blob SHA to replace a file, so
// the store remembers the SHA seen by the last Get or Update of each key.
type Store struct {
	client  *Client
	message string

	mu   sync.Mutex
	shas map[string]string
}

// NewStore creates a document store backed by client.
func NewStore(client *Client) *Store {
	return &Store{
		client:  client,
		message: DefaultCommitMessage,
		shas:    make(map[string]string),
	}
}

// WithCommitMessage sets the message used for document commits.
func (s *Store) WithCommitMessage(message string) *Store {
	if message != "" {
		s.message = message
	}
	return s
}

// Get fetches and decodes the document at key.
// A file that does not exist yet is returned as an empty history.
func (s *Store) Get(ctx context.Context, key string) (*domain.History, error) {
	data, sha, err := s.client.GetFile(ctx, key)
	if IsNotFound(err) {
		s.setSHA(key, "")
		return &domain.History{}, nil
	}
	if err != nil {
		return nil, err
	}

	s.setSHA(key, sha)
	return domain.DecodeHistory(data)
}

// Update commits the encoded history to key, creating the file if needed.
// A stale SHA is refreshed and the commit retried once.
func (s *Store) Update(ctx context.Context, key string, history domain.History) error {
	data, err := history.Encode()
	if err != nil {
		return err
	}

	sha, known := s.sha(key)
	if !known {
		if sha, err = s.currentSHA(ctx, key); err != nil {
			return err
		}
	}

	newSHA, err := s.client.PutFile(ctx, key, data, sha, s.message)
	if IsConflict(err) {
		if sha, err = s.currentSHA(ctx, key); err != nil {
			return err
		}
		newSHA, err = s.client.PutFile(ctx, key, data, sha, s.message)
	}
	if err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}

	s.setSHA(key, newSHA)
	return nil
}

// currentSHA looks up the blob SHA of key, or "" if the file is missing.
func (s *Store) currentSHA(ctx context.Context, key string) (string, error) {
	_, sha, err := s.client.GetFile(ctx, key)
	if IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return sha, nil
}

func (s *Store) sha(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sha, ok := s.shas[key]
	return sha, ok
}

func (s *Store) setSHA(key, sha string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.shas[key] = sha
}
