// Package photo manages ear-symptom photo records and their persistence.
package photo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Photo links a user to a stored image and its submission metadata. Records
// are immutable once created.
type Photo struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"userId"`
	ImageURL   string    `json:"imageUrl"`
	Age        int       `json:"age"`
	Gender     string    `json:"gender"`
	Ear        string    `json:"ear"`
	Symptoms   []string  `json:"symptoms"`
	Other      *string   `json:"other,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// ErrNotFound is returned when a photo does not exist or belongs to another
// user — the two cases are deliberately indistinguishable.
var ErrNotFound = errors.New("photo not found")

// Insert carries the column values for a new photo row. The owner comes from
// the repository scope, never from the caller's input.
type Insert struct {
	ImageURL string
	Age      int
	Gender   string
	Ear      string
	Symptoms []string
	Other    *string
}

// Repo hands out owner-scoped views of photo persistence.
type Repo interface {
	Owner(userID string) OwnerRepo
}

// OwnerRepo is a view of the photo table restricted to a single owner. Every
// query carries the owner filter, so the filter lives here and nowhere else.
type OwnerRepo interface {
	Insert(ctx context.Context, in Insert) (*Photo, error)
	List(ctx context.Context) ([]Photo, error)
	Get(ctx context.Context, id int64) (*Photo, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// Repository implements Repo on a pgx connection pool.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a new photo Repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// Owner returns the repository view scoped to the given user.
func (r *Repository) Owner(userID string) OwnerRepo {
	return &ownerRepo{db: r.db, owner: userID}
}

type ownerRepo struct {
	db    *pgxpool.Pool
	owner string
}

func (r *ownerRepo) Insert(ctx context.Context, in Insert) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(ctx,
		`INSERT INTO photos (user_id, image_url, age, gender, ear, symptoms, other)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, image_url, age, gender, ear, symptoms, other, uploaded_at`,
		r.owner, in.ImageURL, in.Age, in.Gender, in.Ear, in.Symptoms, in.Other,
	).Scan(&p.ID, &p.UserID, &p.ImageURL, &p.Age, &p.Gender, &p.Ear, &p.Symptoms, &p.Other, &p.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("insert photo: %w", err)
	}
	return p, nil
}

// List returns the owner's photos, newest upload first.
func (r *ownerRepo) List(ctx context.Context) ([]Photo, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, image_url, age, gender, ear, symptoms, other, uploaded_at
		 FROM photos
		 WHERE user_id = $1
		 ORDER BY uploaded_at DESC`,
		r.owner,
	)
	if err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.UserID, &p.ImageURL, &p.Age, &p.Gender, &p.Ear, &p.Symptoms, &p.Other, &p.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan photo: %w", err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

func (r *ownerRepo) Get(ctx context.Context, id int64) (*Photo, error) {
	p := &Photo{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, image_url, age, gender, ear, symptoms, other, uploaded_at
		 FROM photos
		 WHERE id = $1 AND user_id = $2`,
		id, r.owner,
	).Scan(&p.ID, &p.UserID, &p.ImageURL, &p.Age, &p.Gender, &p.Ear, &p.Symptoms, &p.Other, &p.UploadedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get photo: %w", err)
	}
	return p, nil
}

// Delete removes the owner's photo row and reports whether a row was deleted.
func (r *ownerRepo) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM photos WHERE id = $1 AND user_id = $2`,
		id, r.owner,
	)
	if err != nil {
		return false, fmt.Errorf("delete photo: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
