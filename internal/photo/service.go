package photo

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/earlog/service/internal/storage"
)

// Upload describes the incoming file of a photo submission.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Service contains business logic for photo submissions. It coordinates the
// object store and the database; the two writes are not atomic, so each
// operation makes an explicit choice about its failure window.
type Service struct {
	repo  Repo
	store storage.Storage
}

// NewService creates a new photo Service.
func NewService(repo Repo, store storage.Storage) *Service {
	return &Service{repo: repo, store: store}
}

// Create uploads the file under a fresh key and inserts the metadata row.
// If the insert fails after a successful upload, the object is deleted again
// best-effort so no orphan is left behind.
func (s *Service) Create(ctx context.Context, ownerID string, up Upload, meta Insert) (*Photo, error) {
	key := storage.UniqueKey(ownerID, up.Filename)
	if err := s.store.Upload(ctx, key, up.Content, up.Size, up.ContentType); err != nil {
		return nil, fmt.Errorf("upload photo: %w", err)
	}
	meta.ImageURL = s.store.PublicURL(key)

	created, err := s.repo.Owner(ownerID).Insert(ctx, meta)
	if err != nil {
		if derr := s.store.Delete(ctx, key); derr != nil {
			log.Printf("photo: compensating delete of %q failed, object orphaned: %v", key, derr)
		}
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	return created, nil
}

// List returns the owner's photos, newest first.
func (s *Service) List(ctx context.Context, ownerID string) ([]Photo, error) {
	return s.repo.Owner(ownerID).List(ctx)
}

// Get returns a single photo owned by ownerID, or ErrNotFound.
func (s *Service) Get(ctx context.Context, ownerID string, id int64) (*Photo, error) {
	return s.repo.Owner(ownerID).Get(ctx, id)
}

// Delete removes the photo row and then its stored object. The row goes
// first: a leftover object is invisible to users and can be swept later,
// whereas a record pointing at a deleted object would serve broken links.
func (s *Service) Delete(ctx context.Context, ownerID string, id int64) error {
	p, err := s.repo.Owner(ownerID).Get(ctx, id)
	if err != nil {
		return err
	}

	key, err := s.store.ObjectKey(p.ImageURL)
	if err != nil {
		return fmt.Errorf("derive object key: %w", err)
	}

	deleted, err := s.repo.Owner(ownerID).Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete photo row: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	if err := s.store.Delete(ctx, key); err != nil {
		log.Printf("photo: object %q orphaned after row delete: %v", key, err)
	}
	return nil
}
