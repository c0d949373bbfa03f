package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"errsite/internal/models"
)

// PostStore handles all post-related database operations. News articles
// and field updates share the posts table, differentiated by type.
type PostStore struct {
	db DBTX
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db DBTX) *PostStore {
	return &PostStore{db: db}
}

// WithTx returns a copy of the store bound to the given transaction.
func (s *PostStore) WithTx(tx *sql.Tx) *PostStore {
	return &PostStore{db: tx}
}

const postColumns = `id, type, slug, title_en, title_ar, excerpt_en, excerpt_ar,
	       body_en, body_ar, status, locality_id, author_id,
	       published_at, created_at, updated_at`

func scanPost(row *sql.Row) (*models.Post, error) {
	p := &models.Post{}
	err := row.Scan(
		&p.ID, &p.Type, &p.Slug, &p.TitleEN, &p.TitleAR, &p.ExcerptEN, &p.ExcerptAR,
		&p.BodyEN, &p.BodyAR, &p.Status, &p.LocalityID, &p.AuthorID,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func scanPosts(rows *sql.Rows) ([]models.Post, error) {
	defer rows.Close()
	var items []models.Post
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(
			&p.ID, &p.Type, &p.Slug, &p.TitleEN, &p.TitleAR, &p.ExcerptEN, &p.ExcerptAR,
			&p.BodyEN, &p.BodyAR, &p.Status, &p.LocalityID, &p.AuthorID,
			&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

// ListByType returns all posts of the given type, newest first.
func (s *PostStore) ListByType(postType models.PostType) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts WHERE type = $1
		ORDER BY created_at DESC
	`, postType)
	if err != nil {
		return nil, fmt.Errorf("list posts by type: %w", err)
	}
	return scanPosts(rows)
}

// ListByTypeInLocalities returns posts of the given type whose locality
// is in the given set. Used for the restricted-scope admin listing.
func (s *PostStore) ListByTypeInLocalities(postType models.PostType, localityIDs []uuid.UUID) ([]models.Post, error) {
	ids := make([]string, len(localityIDs))
	for i, id := range localityIDs {
		ids[i] = id.String()
	}
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts WHERE type = $1 AND locality_id = ANY($2::uuid[])
		ORDER BY created_at DESC
	`, postType, ids)
	if err != nil {
		return nil, fmt.Errorf("list posts in localities: %w", err)
	}
	return scanPosts(rows)
}

// ListPublishedByType returns published posts of the given type, newest
// published first. Used for public page rendering.
func (s *PostStore) ListPublishedByType(postType models.PostType, limit int) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts WHERE type = $1 AND status = 'PUBLISHED'
		ORDER BY published_at DESC
		LIMIT $2
	`, postType, limit)
	if err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return scanPosts(rows)
}

// ListPublishedByLocality returns published posts for one locality,
// newest published first.
func (s *PostStore) ListPublishedByLocality(localityID uuid.UUID) ([]models.Post, error) {
	rows, err := s.db.Query(`
		SELECT `+postColumns+`
		FROM posts WHERE locality_id = $1 AND status = 'PUBLISHED'
		ORDER BY published_at DESC
	`, localityID)
	if err != nil {
		return nil, fmt.Errorf("list published posts by locality: %w", err)
	}
	return scanPosts(rows)
}

// FindByID retrieves a post by UUID. Returns nil if not found.
func (s *PostStore) FindByID(id uuid.UUID) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+` FROM posts WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindPublishedBySlug retrieves a published post by slug. Used for public
// page rendering; drafts are invisible here.
func (s *PostStore) FindPublishedBySlug(slug string) (*models.Post, error) {
	p, err := scanPost(s.db.QueryRow(`
		SELECT `+postColumns+` FROM posts WHERE slug = $1 AND status = 'PUBLISHED'
	`, slug))
	if err != nil {
		return nil, fmt.Errorf("find published post by slug: %w", err)
	}
	return p, nil
}

// Create inserts a new post and returns it with the generated ID. The
// unique index on slug rejects duplicates.
func (s *PostStore) Create(p *models.Post) (*models.Post, error) {
	created, err := scanPost(s.db.QueryRow(`
		INSERT INTO posts (type, slug, title_en, title_ar, excerpt_en, excerpt_ar,
		                   body_en, body_ar, status, locality_id, author_id, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+postColumns+`
	`, p.Type, p.Slug, p.TitleEN, p.TitleAR, p.ExcerptEN, p.ExcerptAR,
		p.BodyEN, p.BodyAR, p.Status, p.LocalityID, p.AuthorID, p.PublishedAt))
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return created, nil
}

// Update modifies an existing post's content fields. Status transitions
// go through SetStatus so published_at stays consistent.
func (s *PostStore) Update(p *models.Post) error {
	res, err := s.db.Exec(`
		UPDATE posts SET
			slug = $1, title_en = $2, title_ar = $3, excerpt_en = $4, excerpt_ar = $5,
			body_en = $6, body_ar = $7, locality_id = $8, updated_at = NOW()
		WHERE id = $9
	`, p.Slug, p.TitleEN, p.TitleAR, p.ExcerptEN, p.ExcerptAR,
		p.BodyEN, p.BodyAR, p.LocalityID, p.ID)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetStatus transitions a post between DRAFT and PUBLISHED, keeping the
// published_at invariant: non-null exactly when published.
func (s *PostStore) SetStatus(id uuid.UUID, status models.PostStatus) error {
	res, err := s.db.Exec(`
		UPDATE posts SET
			status = $1,
			published_at = CASE WHEN $1 = 'PUBLISHED' THEN NOW() ELSE NULL END,
			updated_at = NOW()
		WHERE id = $2
	`, status, id)
	if err != nil {
		return fmt.Errorf("set post status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByType returns the number of posts of the given type.
func (s *PostStore) CountByType(postType models.PostType) (int, error) {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts WHERE type = $1`, postType).Scan(&count); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}
