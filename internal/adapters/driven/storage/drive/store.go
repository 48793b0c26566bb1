package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/arrivals/internal/core/domain"
	"github.com/custodia-labs/arrivals/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// MimeTypeJSON is the content type documents are uploaded with.
const MimeTypeJSON = "application/json"

// MaxDocumentSize caps how much of a document is downloaded (10MB).
const MaxDocumentSize = 10 * 1024 * 1024

// NewService creates a Google Drive API service using the provided TokenSource.
func NewService(ctx context.Context, ts oauth2.TokenSource, opts ...option.ClientOption) (*drive.Service, error) {
	opts = append([]option.ClientOption{option.WithTokenSource(ts)}, opts...)
	return drive.NewService(ctx, opts...)
}

// Store keeps history documents as files in one Drive folder.
// The key is the file name. File IDs are cached after the first lookup.
type Store struct {
	svc      *drive.Service
	folderID string

	mu  sync.Mutex
	ids map[string]string
}

// NewStore creates a document store in folderID.
// An empty folderID uses the root of the user's Drive.
func NewStore(svc *drive.Service, folderID string) *Store {
	return &Store{
		svc:      svc,
		folderID: folderID,
		ids:      make(map[string]string),
	}
}

// Get downloads and decodes the document named key.
// A missing file is returned as an empty history.
func (s *Store) Get(ctx context.Context, key string) (*domain.History, error) {
	id, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if id == "" {
		return &domain.History{}, nil
	}

	resp, err := s.svc.Files.Get(id).Context(ctx).Download()
	if IsNotFound(err) {
		s.forget(key)
		return &domain.History{}, nil
	}
	if err != nil {
		return nil, wrapError(err, "download document")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return domain.DecodeHistory(data)
}

// Update uploads the encoded history, creating the file if it is missing.
func (s *Store) Update(ctx context.Context, key string, history domain.History) error {
	data, err := history.Encode()
	if err != nil {
		return err
	}

	id, err := s.lookup(ctx, key)
	if err != nil {
		return err
	}

	if id != "" {
		_, err = s.svc.Files.Update(id, &drive.File{}).
			Media(bytes.NewReader(data), googleapi.ContentType(MimeTypeJSON)).
			Fields("id").
			Context(ctx).
			Do()
		if !IsNotFound(err) {
			return wrapError(err, "update document")
		}
		// Deleted since the lookup; fall through and create it again.
		s.forget(key)
	}

	file := &drive.File{Name: key, MimeType: MimeTypeJSON}
	if s.folderID != "" {
		file.Parents = []string{s.folderID}
	}
	created, err := s.svc.Files.Create(file).
		Media(bytes.NewReader(data), googleapi.ContentType(MimeTypeJSON)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return wrapError(err, "create document")
	}

	s.remember(key, created.Id)
	return nil
}

// lookup returns the file ID for key, or "" if no such file exists.
func (s *Store) lookup(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	id, ok := s.ids[key]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	list, err := s.svc.Files.List().
		Q(s.query(key)).
		Fields("files(id, name)").
		PageSize(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", wrapError(err, "find document")
	}
	if len(list.Files) == 0 {
		return "", nil
	}

	s.remember(key, list.Files[0].Id)
	return list.Files[0].Id, nil
}

func (s *Store) query(key string) string {
	q := fmt.Sprintf("name = '%s' and trashed = false", escapeQuery(key))
	if s.folderID != "" {
		q += fmt.Sprintf(" and '%s' in parents", escapeQuery(s.folderID))
	}
	return q
}

func (s *Store) remember(key, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids[key] = id
}

func (s *Store) forget(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ids, key)
}

// escapeQuery escapes a value for use inside a quoted Drive query string.
func escapeQuery(v string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
}
