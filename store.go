package graphpress

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store wraps a SQLite database and provides CRUD operations for articles,
// their meta fields, reader comments, and uploaded images.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL for concurrent read/write access, busy_timeout so writers wait
	// instead of returning SQLITE_BUSY, synchronous=NORMAL is safe with WAL
	// and avoids an fsync per transaction.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS articles (
    slug TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    date TEXT NOT NULL,
    tags TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT '',
    summary TEXT NOT NULL,
    content TEXT NOT NULL,
    published INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS article_meta (
    slug TEXT NOT NULL,
    key TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (slug, key)
);

CREATE TABLE IF NOT EXISTS comments (
    id TEXT PRIMARY KEY,
    slug TEXT NOT NULL,
    author TEXT NOT NULL,
    body TEXT NOT NULL,
    created TEXT NOT NULL,
    approved INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_comments_slug ON comments(slug);

CREATE TABLE IF NOT EXISTS images (
    filename TEXT PRIMARY KEY,
    original_name TEXT NOT NULL,
    width INTEGER NOT NULL,
    height INTEGER NOT NULL,
    size INTEGER NOT NULL,
    uploaded_at TEXT NOT NULL
);
`)
	return err
}

const articleColumns = `slug, title, date, tags, category, summary, content, published`

func scanArticle(scan func(dest ...any) error) (Article, error) {
	var slug, title, date, tags, category, summary, content string
	var published int
	if err := scan(&slug, &title, &date, &tags, &category, &summary, &content, &published); err != nil {
		return Article{}, err
	}
	return Article{
		Slug:      slug,
		Title:     title,
		Date:      date,
		Tags:      ParseTags(tags),
		Category:  category,
		Summary:   summary,
		Content:   content,
		Link:      "/articles/" + slug,
		Published: published == 1,
	}, nil
}

// ListArticles returns all published articles ordered by date descending.
// If tag is non-empty, results are filtered to articles carrying that tag.
func (s *Store) ListArticles(tag string) ([]Article, error) {
	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.Query(`SELECT ` + articleColumns + ` FROM articles WHERE published = 1 ORDER BY date DESC`)
	} else {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		rows, err = s.db.Query(`SELECT `+articleColumns+` FROM articles WHERE published = 1 AND instr(lower(tags), ',' || ? || ',') > 0 ORDER BY date DESC`, normalized)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListAllArticles returns every article (published and drafts) ordered by date descending.
func (s *Store) ListAllArticles() ([]Article, error) {
	rows, err := s.db.Query(`SELECT ` + articleColumns + ` FROM articles ORDER BY date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []Article
	for rows.Next() {
		a, err := scanArticle(rows.Scan)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, rows.Err()
}

// ListTags returns a sorted, deduplicated slice of all tags from published articles.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM articles WHERE published = 1`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[strings.ToLower(t)] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var result []string
	for t := range set {
		result = append(result, t)
	}
	sort.Strings(result)
	return result, nil
}

// ListCategories returns a sorted, deduplicated slice of non-empty categories
// from published articles.
func (s *Store) ListCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM articles WHERE published = 1 AND category != '' ORDER BY category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []string
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, err
		}
		result = append(result, cat)
	}
	return result, rows.Err()
}

// GetArticle returns a single published article by slug, with meta fields.
func (s *Store) GetArticle(slug string) (Article, error) {
	a, err := scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ? AND published = 1`, slug).Scan)
	if err != nil {
		return Article{}, err
	}
	a.Meta, err = s.getMeta(slug)
	return a, err
}

// GetArticleAny returns an article by slug regardless of published status (for admin).
func (s *Store) GetArticleAny(slug string) (Article, error) {
	a, err := scanArticle(s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug).Scan)
	if err != nil {
		return Article{}, err
	}
	a.Meta, err = s.getMeta(slug)
	return a, err
}

func (s *Store) getMeta(slug string) (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM article_meta WHERE slug = ?`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		meta[k] = v
	}
	if len(meta) == 0 {
		return nil, rows.Err()
	}
	return meta, rows.Err()
}

// SaveArticle upserts an article together with its meta fields. Tags are
// normalized to lowercase; the meta table rows for the slug are replaced
// wholesale so stale keys never linger.
func (s *Store) SaveArticle(a Article) error {
	normalizedTags := make([]string, len(a.Tags))
	for i, t := range a.Tags {
		normalizedTags[i] = strings.ToLower(strings.TrimSpace(t))
	}
	tagString := "," + strings.Join(normalizedTags, ",") + ","
	published := 0
	if a.Published {
		published = 1
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO articles (slug, title, date, tags, category, summary, content, published) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.Slug, a.Title, a.Date, tagString, strings.TrimSpace(a.Category), a.Summary, a.Content, published); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM article_meta WHERE slug = ?`, a.Slug); err != nil {
		return err
	}
	for k, v := range a.Meta {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO article_meta (slug, key, value) VALUES (?, ?, ?)`, a.Slug, k, v); err != nil {
			return fmt.Errorf("save meta %q: %w", k, err)
		}
	}
	return tx.Commit()
}

// DeleteArticle removes an article, its meta fields, and its comments.
func (s *Store) DeleteArticle(slug string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM articles WHERE slug = ?`, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM article_meta WHERE slug = ?`, slug); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM comments WHERE slug = ?`, slug); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveComment inserts a new comment. The caller assigns the ID.
func (s *Store) SaveComment(c Comment) error {
	approved := 0
	if c.Approved {
		approved = 1
	}
	_, err := s.db.Exec(`INSERT INTO comments (id, slug, author, body, created, approved) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Slug, c.Author, c.Body, c.Created, approved)
	return err
}

// ListComments returns approved comments for a slug, oldest first.
func (s *Store) ListComments(slug string) ([]Comment, error) {
	rows, err := s.db.Query(`SELECT id, slug, author, body, created, approved FROM comments WHERE slug = ? AND approved = 1 ORDER BY created ASC`, slug)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComments(rows)
}

// ListPendingComments returns unapproved comments across all articles,
// newest first (for the moderation queue).
func (s *Store) ListPendingComments() ([]Comment, error) {
	rows, err := s.db.Query(`SELECT id, slug, author, body, created, approved FROM comments WHERE approved = 0 ORDER BY created DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectComments(rows)
}

func collectComments(rows *sql.Rows) ([]Comment, error) {
	var comments []Comment
	for rows.Next() {
		var c Comment
		var approved int
		if err := rows.Scan(&c.ID, &c.Slug, &c.Author, &c.Body, &c.Created, &approved); err != nil {
			return nil, err
		}
		c.Approved = approved == 1
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// ApproveComment marks a comment as approved.
func (s *Store) ApproveComment(id string) error {
	_, err := s.db.Exec(`UPDATE comments SET approved = 1 WHERE id = ?`, id)
	return err
}

// DeleteComment removes a comment by ID.
func (s *Store) DeleteComment(id string) error {
	_, err := s.db.Exec(`DELETE FROM comments WHERE id = ?`, id)
	return err
}

// ListImages returns all uploaded image records, newest first.
func (s *Store) ListImages() ([]Image, error) {
	rows, err := s.db.Query(`SELECT filename, original_name, width, height, size, uploaded_at FROM images ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var images []Image
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.Filename, &img.OriginalName, &img.Width, &img.Height, &img.Size, &img.UploadedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// SaveImage upserts an image metadata record.
func (s *Store) SaveImage(img Image) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO images (filename, original_name, width, height, size, uploaded_at) VALUES (?, ?, ?, ?, ?, ?)`,
		img.Filename, img.OriginalName, img.Width, img.Height, img.Size, img.UploadedAt)
	return err
}

// DeleteImage removes an image record by filename.
func (s *Store) DeleteImage(filename string) error {
	_, err := s.db.Exec(`DELETE FROM images WHERE filename = ?`, filename)
	return err
}

// ParseTags splits a comma-delimited tag string (e.g. ",graphql,api,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
