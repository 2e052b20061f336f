package analytics

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for analytics.
type Store struct {
	db *sql.DB
}

// NewStore creates a new analytics store.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			browser TEXT NOT NULL,
			path TEXT NOT NULL,
			referrer TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS copy_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			visitor_id TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			path TEXT NOT NULL,
			lang TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS bot_visits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			bot_name TEXT NOT NULL,
			ip_hash TEXT NOT NULL,
			user_agent TEXT NOT NULL,
			path TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_visits_timestamp ON visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_visits_visitor_id ON visits(visitor_id);
		CREATE INDEX IF NOT EXISTS idx_visits_path ON visits(path);
		CREATE INDEX IF NOT EXISTS idx_copy_events_timestamp ON copy_events(timestamp);
		CREATE INDEX IF NOT EXISTS idx_copy_events_lang ON copy_events(lang);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_timestamp ON bot_visits(timestamp);
		CREATE INDEX IF NOT EXISTS idx_bot_visits_name ON bot_visits(bot_name);

		CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	return err
}

// GetSetting retrieves a setting value by key. Returns empty string if not found.
func (s *Store) GetSetting(key string) (string, error) {
	var val string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&val)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return val, err
}

// SetSetting stores a setting value by key (upsert).
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// sqliteTime formats a timestamp the way SQLite's date functions expect.
// Storing and binding the same text format keeps range comparisons and
// strftime() correct.
func sqliteTime(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// SaveVisit stores a new page view.
func (s *Store) SaveVisit(v *Visit) error {
	_, err := s.db.Exec(`INSERT INTO visits (visitor_id, ip_hash, browser, path, referrer, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		v.VisitorID, v.IPHash, v.Browser, v.Path, v.Referrer, sqliteTime(v.Timestamp))
	return err
}

// SaveCopyEvent stores a snippet copy event.
func (s *Store) SaveCopyEvent(e *CopyEvent) error {
	_, err := s.db.Exec(`INSERT INTO copy_events (visitor_id, ip_hash, path, lang, timestamp) VALUES (?, ?, ?, ?, ?)`,
		e.VisitorID, e.IPHash, e.Path, e.Lang, sqliteTime(e.Timestamp))
	return err
}

// SaveBotVisit stores a new bot visit.
func (s *Store) SaveBotVisit(bv *BotVisit) error {
	_, err := s.db.Exec(`INSERT INTO bot_visits (bot_name, ip_hash, user_agent, path, timestamp) VALUES (?, ?, ?, ?, ?)`,
		bv.BotName, bv.IPHash, bv.UserAgent, bv.Path, sqliteTime(bv.Timestamp))
	return err
}

func (s *Store) countRange(query string, from, to time.Time) (int, error) {
	var count int
	err := s.db.QueryRow(query, sqliteTime(from), sqliteTime(to)).Scan(&count)
	return count, err
}

func (s *Store) pageStats(query string, from, to time.Time) ([]PageStat, error) {
	rows, err := s.db.Query(query, sqliteTime(from), sqliteTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PageStat
	for rows.Next() {
		var p PageStat
		if err := rows.Scan(&p.Path, &p.Count); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) dimensionStats(query string, from, to time.Time) ([]DimensionStat, error) {
	rows, err := s.db.Query(query, sqliteTime(from), sqliteTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) dailySeries(query string, from, to time.Time) ([]DailyView, error) {
	rows, err := s.db.Query(query, sqliteTime(from), sqliteTime(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []DailyView
	for rows.Next() {
		var d DailyView
		if err := rows.Scan(&d.Date, &d.Views); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetStats returns aggregated readership statistics for the given range.
// The independent aggregations fan out concurrently; the first error wins.
func (s *Store) GetStats(from, to time.Time) (*Stats, error) {
	stats := &Stats{
		Period:        from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopArticles:   []PageStat{},
		TopCopied:     []PageStat{},
		SnippetLangs:  []DimensionStat{},
		BrowserStats:  []DimensionStat{},
		ReferrerStats: []DimensionStat{},
		DailyViews:    []DailyView{},
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	run := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("%s: %w", name, err)
				}
				mu.Unlock()
			}
		}()
	}

	run("total views", func() error {
		count, err := s.countRange(`SELECT COUNT(*) FROM visits WHERE timestamp >= ? AND timestamp < ?`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TotalViews = count
		mu.Unlock()
		return nil
	})

	run("unique visitors", func() error {
		count, err := s.countRange(`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ? AND timestamp < ?`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.UniqueVisitors = count
		mu.Unlock()
		return nil
	})

	run("total copies", func() error {
		count, err := s.countRange(`SELECT COUNT(*) FROM copy_events WHERE timestamp >= ? AND timestamp < ?`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TotalCopies = count
		mu.Unlock()
		return nil
	})

	run("top articles", func() error {
		pages, err := s.pageStats(`SELECT path, COUNT(*) AS views FROM visits WHERE timestamp >= ? AND timestamp < ? GROUP BY path ORDER BY views DESC LIMIT 10`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TopArticles = pages
		mu.Unlock()
		return nil
	})

	run("top copied", func() error {
		pages, err := s.pageStats(`SELECT path, COUNT(*) AS copies FROM copy_events WHERE timestamp >= ? AND timestamp < ? GROUP BY path ORDER BY copies DESC LIMIT 10`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.TopCopied = pages
		mu.Unlock()
		return nil
	})

	run("snippet langs", func() error {
		dims, err := s.dimensionStats(`SELECT lang, COUNT(*) AS n FROM copy_events WHERE timestamp >= ? AND timestamp < ? GROUP BY lang ORDER BY n DESC LIMIT 10`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.SnippetLangs = dims
		mu.Unlock()
		return nil
	})

	run("browsers", func() error {
		dims, err := s.dimensionStats(`SELECT browser, COUNT(*) AS n FROM visits WHERE timestamp >= ? AND timestamp < ? GROUP BY browser ORDER BY n DESC LIMIT 10`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.BrowserStats = dims
		mu.Unlock()
		return nil
	})

	run("referrers", func() error {
		dims, err := s.dimensionStats(`SELECT referrer, COUNT(*) AS n FROM visits WHERE timestamp >= ? AND timestamp < ? GROUP BY referrer ORDER BY n DESC LIMIT 10`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.ReferrerStats = dims
		mu.Unlock()
		return nil
	})

	run("daily views", func() error {
		series, err := s.dailySeries(`SELECT strftime('%Y-%m-%d', timestamp) AS day, COUNT(*) AS views FROM visits WHERE timestamp >= ? AND timestamp < ? GROUP BY day ORDER BY day`, from, to)
		if err != nil {
			return err
		}
		mu.Lock()
		stats.DailyViews = series
		mu.Unlock()
		return nil
	})

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return stats, nil
}

// GetBotStats returns aggregated bot statistics for the given range.
func (s *Store) GetBotStats(from, to time.Time) (*BotStats, error) {
	stats := &BotStats{
		Period:      from.Format("2006-01-02") + " to " + to.Format("2006-01-02"),
		TopBots:     []DimensionStat{},
		TopPages:    []PageStat{},
		DailyVisits: []DailyView{},
	}

	count, err := s.countRange(`SELECT COUNT(*) FROM bot_visits WHERE timestamp >= ? AND timestamp < ?`, from, to)
	if err != nil {
		return nil, fmt.Errorf("count bot visits: %w", err)
	}
	stats.TotalVisits = count

	topBots, err := s.dimensionStats(`SELECT bot_name, COUNT(*) AS n FROM bot_visits WHERE timestamp >= ? AND timestamp < ? GROUP BY bot_name ORDER BY n DESC LIMIT 10`, from, to)
	if err != nil {
		return nil, fmt.Errorf("top bots: %w", err)
	}
	stats.TopBots = topBots

	topPages, err := s.pageStats(`SELECT path, COUNT(*) AS n FROM bot_visits WHERE timestamp >= ? AND timestamp < ? GROUP BY path ORDER BY n DESC LIMIT 10`, from, to)
	if err != nil {
		return nil, fmt.Errorf("top bot pages: %w", err)
	}
	stats.TopPages = topPages

	daily, err := s.dailySeries(`SELECT strftime('%Y-%m-%d', timestamp) AS day, COUNT(*) AS n FROM bot_visits WHERE timestamp >= ? AND timestamp < ? GROUP BY day ORDER BY day`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily bot visits: %w", err)
	}
	stats.DailyVisits = daily

	return stats, nil
}

// CleanupOldVisits removes visits, copy events, and bot visits older than
// the retention period.
func (s *Store) CleanupOldVisits(retentionDays int) error {
	cutoff := sqliteTime(time.Now().UTC().AddDate(0, 0, -retentionDays))
	if _, err := s.db.Exec(`DELETE FROM visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup visits: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM copy_events WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup copy_events: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM bot_visits WHERE timestamp < ?`, cutoff); err != nil {
		return fmt.Errorf("cleanup bot_visits: %w", err)
	}
	return nil
}

// StartCleanupScheduler runs periodic cleanup of old data. Returns a stop function.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := s.CleanupOldVisits(retentionDays); err != nil {
					fmt.Printf("cleanup error: %v\n", err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// GetRealtimeVisitors returns the number of unique visitors in the last 5 minutes.
func (s *Store) GetRealtimeVisitors() (int, error) {
	cutoff := sqliteTime(time.Now().UTC().Add(-5 * time.Minute))
	var count int
	err := s.db.QueryRow(`SELECT COUNT(DISTINCT visitor_id) FROM visits WHERE timestamp >= ?`, cutoff).Scan(&count)
	return count, err
}
