package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const itemColumns = "id, source, url, caption_strategy, caption_custom, filename, downloaded, posted, logo, format_preset, created_at"

// NextUnposted returns the single highest-priority unposted item, or nil when
// the queue holds no unposted rows. Items that are already downloaded rank
// before never-downloaded items so a run that failed after download is
// retried before new downloads begin; within each group the oldest wins.
func (s *Store) NextUnposted(ctx context.Context) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+itemColumns+` FROM media_queue
         WHERE posted = 0
         ORDER BY downloaded DESC, created_at ASC, id ASC
         LIMIT 1`)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select next unposted: %w", err)
	}
	return item, nil
}

// MarkDownloaded records a completed fetch: sets downloaded and stores the
// local artifact name. Idempotent; returns ErrNotFound when id has no row.
func (s *Store) MarkDownloaded(ctx context.Context, id int64, filename string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE media_queue SET downloaded = 1, filename = ? WHERE id = ?`,
		filename, id)
	if err != nil {
		return fmt.Errorf("mark downloaded: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark downloaded rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark downloaded id %d: %w", id, ErrNotFound)
	}
	return nil
}

// MarkPosted records a confirmed publish. Idempotent; returns ErrNotFound
// when id has no row.
func (s *Store) MarkPosted(ctx context.Context, id int64) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE media_queue SET posted = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark posted rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("mark posted id %d: %w", id, ErrNotFound)
	}
	return nil
}

// InsertMany validates and inserts a batch in one transaction; either every
// row is created or none are. Returned ids follow input order.
func (s *Store) InsertMany(ctx context.Context, items []NewItem) ([]int64, error) {
	if len(items) == 0 {
		return nil, nil
	}
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}

	ctx = ensureContext(ctx)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ids := make([]int64, 0, len(items))
	for i := range items {
		item := &items[i]
		logo := true
		if item.Logo != nil {
			logo = *item.Logo
		}
		timestamp := time.Now().UTC().Format(time.RFC3339Nano)
		res, err := tx.ExecContext(ctx,
			`INSERT INTO media_queue (source, url, caption_strategy, caption_custom, logo, format_preset, created_at)
             VALUES (?, ?, ?, ?, ?, ?, ?)`,
			string(item.Source),
			item.URL,
			string(item.CaptionStrategy),
			item.CaptionCustom,
			boolToInt(logo),
			string(item.FormatPreset),
			timestamp,
		)
		if err != nil {
			return nil, fmt.Errorf("insert item %d: %w", i, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit insert: %w", err)
	}
	return ids, nil
}

// Insert adds a single item and returns its assigned id.
func (s *Store) Insert(ctx context.Context, item NewItem) (int64, error) {
	ids, err := s.InsertMany(ctx, []NewItem{item})
	if err != nil {
		return 0, err
	}
	return ids[0], nil
}

// Remove deletes a row by id, returning the count removed (0 or 1). A
// missing id is not an error.
func (s *Store) Remove(ctx context.Context, id int64) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM media_queue WHERE id = ?`, id)
	if err != nil {
		return 0, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// GetByID fetches a queue item by identifier, or nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*Item, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT `+itemColumns+` FROM media_queue WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List returns all items ordered by creation time, optionally filtered to
// unposted rows only.
func (s *Store) List(ctx context.Context, unpostedOnly bool) ([]*Item, error) {
	query := `SELECT ` + itemColumns + ` FROM media_queue`
	if unpostedOnly {
		query += ` WHERE posted = 0`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ensureContext(ctx), query)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetLogo toggles the brand overlay flag on a row. Returns ErrNotFound when
// id has no row.
func (s *Store) SetLogo(ctx context.Context, id int64, logo bool) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE media_queue SET logo = ? WHERE id = ?`, boolToInt(logo), id)
	if err != nil {
		return fmt.Errorf("set logo: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set logo rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("set logo id %d: %w", id, ErrNotFound)
	}
	return nil
}

// Stats summarizes queue composition.
type Stats struct {
	Total      int
	Pending    int // neither downloaded nor posted
	Downloaded int // downloaded but unposted
	Posted     int
}

// Summary returns aggregated item counts.
func (s *Store) Summary(ctx context.Context) (Stats, error) {
	row := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN downloaded = 0 AND posted = 0 THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN downloaded = 1 AND posted = 0 THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN posted = 1 THEN 1 ELSE 0 END), 0)
         FROM media_queue`)
	var stats Stats
	if err := row.Scan(&stats.Total, &stats.Pending, &stats.Downloaded, &stats.Posted); err != nil {
		return Stats{}, fmt.Errorf("queue summary: %w", err)
	}
	return stats, nil
}

// ClearPosted removes rows that have completed the pipeline.
func (s *Store) ClearPosted(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM media_queue WHERE posted = 1`)
	if err != nil {
		return 0, fmt.Errorf("clear posted: %w", err)
	}
	return res.RowsAffected()
}

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id         int64
		source     string
		url        string
		strategy   string
		custom     sql.NullString
		filename   sql.NullString
		downloaded int
		posted     int
		logo       int
		preset     string
		createdRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&source,
		&url,
		&strategy,
		&custom,
		&filename,
		&downloaded,
		&posted,
		&logo,
		&preset,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:              id,
		Source:          Source(source),
		URL:             url,
		CaptionStrategy: CaptionStrategy(strategy),
		CaptionCustom:   custom.String,
		Filename:        filename.String,
		Downloaded:      downloaded != 0,
		Posted:          posted != 0,
		Logo:            logo != 0,
		FormatPreset:    FormatPreset(preset),
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	return item, nil
}
