package postgres

import (
	"context"

	"github.com/hongminglow/forum-be/internal/models"
)

// CreatePost inserts a post and returns it with the author's username.
func (s *Store) CreatePost(ctx context.Context, authorID int64, title, body string) (models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const query = `
		WITH inserted AS (
			INSERT INTO posts (author_id, title, body)
			VALUES ($1, $2, $3)
			RETURNING id, author_id, title, body, created_at
		)
		SELECT i.id, i.author_id, u.username, i.title, i.body, i.created_at
		FROM inserted i
		JOIN users u ON u.id = i.author_id`

	var post models.Post
	err := s.pool.QueryRow(ctx, query, authorID, title, body).
		Scan(&post.ID, &post.AuthorID, &post.Author, &post.Title, &post.Body, &post.CreatedAt)
	if err != nil {
		return models.Post{}, classify("insert post", err)
	}
	return post, nil
}

// ListPosts returns the most recent posts, newest first.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT p.id, p.author_id, u.username, p.title, p.body, p.created_at
		FROM posts p
		JOIN users u ON u.id = p.author_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, classify("list posts", err)
	}
	defer rows.Close()

	posts := []models.Post{}
	for rows.Next() {
		var post models.Post
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Author, &post.Title, &post.Body, &post.CreatedAt); err != nil {
			return nil, classify("scan post", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate posts", err)
	}
	return posts, nil
}
