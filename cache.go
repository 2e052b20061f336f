package graphpress

import (
	"database/sql"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a requested article does not exist.
var ErrNotFound = sql.ErrNoRows

// ArticleCache is an in-memory cache of published articles plus their tag
// and category indexes, refreshed from the Store once per TTL.
type ArticleCache struct {
	mu         sync.RWMutex
	articles   []Article
	tags       []string
	categories []string
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewArticleCache creates an ArticleCache backed by the given Store.
func NewArticleCache(s *Store, ttl time.Duration) *ArticleCache {
	return &ArticleCache{store: s, ttl: ttl}
}

func (c *ArticleCache) valid() bool {
	return c.articles != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *ArticleCache) Invalidate() {
	c.mu.Lock()
	c.articles = nil
	c.tags = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *ArticleCache) load() error {
	if c.valid() {
		return nil
	}
	articles, err := c.store.ListArticles("")
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	categories, err := c.store.ListCategories()
	if err != nil {
		return err
	}
	c.articles = articles
	c.tags = tags
	c.categories = categories
	c.fetched = time.Now()
	return nil
}

// ensureLoaded returns the cached state after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *ArticleCache) ensureLoaded() ([]Article, []string, []string, error) {
	c.mu.RLock()
	if c.valid() {
		articles, tags, categories := c.articles, c.tags, c.categories
		c.mu.RUnlock()
		return articles, tags, categories, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return nil, nil, nil, err
	}
	return c.articles, c.tags, c.categories, nil
}

// ListArticles returns published articles, optionally filtered by tag and/or
// category. Empty filters match everything.
func (c *ArticleCache) ListArticles(tag, category string) ([]Article, error) {
	articles, _, _, err := c.ensureLoaded()
	if err != nil {
		return nil, err
	}
	if tag == "" && category == "" {
		return articles, nil
	}
	normalizedTag := normalizeTag(tag)
	normalizedCat := normalizeTag(category)
	var filtered []Article
	for _, a := range articles {
		if normalizedCat != "" && normalizeTag(a.Category) != normalizedCat {
			continue
		}
		if normalizedTag != "" && !hasTag(a, normalizedTag) {
			continue
		}
		filtered = append(filtered, a)
	}
	return filtered, nil
}

func hasTag(a Article, normalized string) bool {
	for _, t := range a.Tags {
		if normalizeTag(t) == normalized {
			return true
		}
	}
	return false
}

// ListTags returns all unique tags from published articles.
func (c *ArticleCache) ListTags() ([]string, error) {
	_, tags, _, err := c.ensureLoaded()
	return tags, err
}

// ListCategories returns all unique categories from published articles.
func (c *ArticleCache) ListCategories() ([]string, error) {
	_, _, categories, err := c.ensureLoaded()
	return categories, err
}

// GetArticle returns a single published article by slug. The cache stores
// article rows without meta fields, so this falls through to the Store,
// which loads them in one extra query.
func (c *ArticleCache) GetArticle(slug string) (Article, error) {
	articles, _, _, err := c.ensureLoaded()
	if err != nil {
		return Article{}, err
	}
	for _, a := range articles {
		if a.Slug == slug {
			return c.store.GetArticle(slug)
		}
	}
	return Article{}, ErrNotFound
}

func normalizeTag(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}
