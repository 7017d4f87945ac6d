package lot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository reads lots and records announcements.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// NewRepository creates a lot repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

var selectColumns = strings.Join(Columns, ", ")

const insertSQL = `INSERT INTO lots
	(id, address, zoning, land_value, improvement_value, neighborhood, zipcode, acreage, lat, lon, auditor_parcel_ids)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// nextEligibleSQL picks one unannounced lot with a building on it.
var nextEligibleSQL = fmt.Sprintf(`SELECT %s FROM lots
	WHERE is_posted = 0
	AND improvement_value > 0
	ORDER BY RANDOM()
	LIMIT 1`, selectColumns)

var byIDSQL = fmt.Sprintf(`SELECT %s FROM lots WHERE id = ? LIMIT 1`, selectColumns)

const markPostedSQL = `UPDATE lots SET is_posted = 1, post_url = ?, post_date = ? WHERE id = ?`

// Select returns the lot with the given id, or, when id is nil, a random
// eligible lot: not yet posted and with an improvement value above zero.
// An explicit id is returned whether or not it has been posted.
//
// A nil lot with a nil error means there is nothing to select.
func (r *Repository) Select(ctx context.Context, id *int64) (*Lot, error) {
	var row *sql.Row
	if id != nil {
		row = r.db.QueryRowContext(ctx, byIDSQL, *id)
	} else {
		row = r.db.QueryRowContext(ctx, nextEligibleSQL)
	}

	l, err := scanLot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		if id != nil {
			return nil, storageErr(err, "querying lot %d", *id)
		}
		return nil, storageErr(err, "querying next eligible lot")
	}

	return l, nil
}

// MarkPosted records that the lot was announced at ref. It does not check
// whether the lot was already posted; the last write wins.
//
// Call it only after the announcement is confirmed.
func (r *Repository) MarkPosted(ctx context.Context, id int64, ref string) error {
	today := r.now().UTC().Format(DateLayout)

	result, err := r.db.ExecContext(ctx, markPostedSQL, ref, today, id)
	if err != nil {
		return storageErr(err, "marking lot %d posted", id)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return storageErr(err, "checking rows affected")
	}
	if rows == 0 {
		return storageErr(ErrNotFound, "marking lot %d posted", id)
	}

	return nil
}

// IDs returns the id of every lot in ascending order.
func (r *Repository) IDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id FROM lots ORDER BY id")
	if err != nil {
		return nil, storageErr(err, "listing lot ids")
	}
	defer func() {
		_ = rows.Close()
	}()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, storageErr(err, "scanning lot id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "iterating lot ids")
	}

	return ids, nil
}

// Counts summarizes the dataset.
type Counts struct {
	Total    int `json:"total"`
	Posted   int `json:"posted"`
	Eligible int `json:"eligible"`
}

// Count returns how many lots exist, how many were posted and how many
// remain eligible for random selection.
func (r *Repository) Count(ctx context.Context) (*Counts, error) {
	var c Counts
	err := r.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN is_posted = 1 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN is_posted = 0 AND improvement_value > 0 THEN 1 ELSE 0 END), 0)
		FROM lots`).Scan(&c.Total, &c.Posted, &c.Eligible)
	if err != nil {
		return nil, storageErr(err, "counting lots")
	}
	return &c, nil
}

// Insert stores a lot, or replaces the attributes of an existing lot with
// the same id while keeping its posted state.
func (r *Repository) Insert(ctx context.Context, l *Lot) error {
	return insert(ctx, r.db, l)
}

// InsertAll stores lots in a single transaction.
func (r *Repository) InsertAll(ctx context.Context, lots []*Lot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr(err, "beginning import")
	}

	for _, l := range lots {
		if err := insert(ctx, tx, l); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				return fmt.Errorf("%w (also failed to roll back: %v)", err, rbErr)
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return storageErr(err, "committing import")
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insert(ctx context.Context, db execer, l *Lot) error {
	_, err := db.ExecContext(ctx, insertSQL+upsertClause,
		l.ID, l.Address, l.Zoning, l.LandValue, l.ImprovementValue,
		l.Neighborhood, l.Zipcode, l.Acreage, l.Lat, l.Lon, l.AuditorParcelIDs,
	)
	if err != nil {
		return storageErr(err, "inserting lot %d", l.ID)
	}
	return nil
}

const upsertClause = `
	ON CONFLICT(id) DO UPDATE SET
		address = excluded.address,
		zoning = excluded.zoning,
		land_value = excluded.land_value,
		improvement_value = excluded.improvement_value,
		neighborhood = excluded.neighborhood,
		zipcode = excluded.zipcode,
		acreage = excluded.acreage,
		lat = excluded.lat,
		lon = excluded.lon,
		auditor_parcel_ids = excluded.auditor_parcel_ids`
