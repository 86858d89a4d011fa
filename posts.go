package main

import "database/sql"

const postColumns = "id, author_email, title, content, created_at"

func scanPosts(rows *sql.Rows) ([]Post, error) {
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var post Post
		err := rows.Scan(&post.ID, &post.AuthorEmail, &post.Title, &post.Content, &post.CreatedAt)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// getPosts returns every post, oldest first.
func getPosts(db *sql.DB) ([]Post, error) {
	rows, err := db.Query("SELECT " + postColumns + " FROM posts ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

// getPostsByAuthor returns the posts written by email, oldest first.
func getPostsByAuthor(db *sql.DB, email string) ([]Post, error) {
	rows, err := db.Query("SELECT "+postColumns+" FROM posts WHERE author_email = ? ORDER BY id ASC", email)
	if err != nil {
		return nil, err
	}
	return scanPosts(rows)
}

func getPostByID(db *sql.DB, id int64) (*Post, error) {
	row := db.QueryRow("SELECT "+postColumns+" FROM posts WHERE id = ?", id)

	var post Post
	err := row.Scan(&post.ID, &post.AuthorEmail, &post.Title, &post.Content, &post.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &post, nil
}

func createPost(db *sql.DB, authorEmail, title, content string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO posts (author_email, title, content)
		VALUES (?, ?, ?)`, authorEmail, title, content)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// updatePost changes a post owned by authorEmail. It reports false when no
// such post exists.
func updatePost(db *sql.DB, authorEmail string, id int64, title, content string) (bool, error) {
	result, err := db.Exec(`
		UPDATE posts
		SET title = ?, content = ?
		WHERE id = ? AND author_email = ?`, title, content, id, authorEmail)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

// deletePost removes a post owned by authorEmail. It reports false when no
// such post exists.
func deletePost(db *sql.DB, authorEmail string, id int64) (bool, error) {
	result, err := db.Exec("DELETE FROM posts WHERE id = ? AND author_email = ?", id, authorEmail)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}
