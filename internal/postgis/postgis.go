// Package postgis loads a dataset from PostGIS tables and commits the
// journal of a run back in one transaction.
package postgis

import (
	"context"
	"fmt"

	"github.com/beetlebugorg/maptopo/internal/feature"
	"github.com/beetlebugorg/maptopo/internal/geometry"
	"github.com/beetlebugorg/maptopo/internal/store"
	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v4"
	"github.com/sirupsen/logrus"
)

// DB is a connection to the database holding the dataset tables.
type DB struct {
	conn *pgx.Conn
	log  logrus.FieldLogger
}

// Connect opens a connection to url, retrying with exponential backoff
// while the server is not reachable yet.
func Connect(ctx context.Context, url string, maxRetries uint64, log logrus.FieldLogger) (*DB, error) {
	var conn *pgx.Conn
	op := func() error {
		var err error
		conn, err = pgx.Connect(ctx, url)
		if err != nil {
			log.WithError(err).Debug("database not reachable")
		}
		return err
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), maxRetries), ctx)
	if err := backoff.Retry(op, b); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &DB{conn: conn, log: log}, nil
}

// Close closes the connection.
func (db *DB) Close(ctx context.Context) error {
	return db.conn.Close(ctx)
}

func table(ds *store.Dataset, p feature.Partition) string {
	return pgx.Identifier{ds.Table(p)}.Sanitize()
}

// EnsureSchema creates the partition tables of the dataset when missing.
func (db *DB) EnsureSchema(ctx context.Context, ds *store.Dataset) error {
	for _, p := range feature.Partitions {
		sql := `CREATE TABLE IF NOT EXISTS ` + table(ds, p) + ` (
			id bigint PRIMARY KEY,
			name text,
			type text,
			style text,
			wkb_geometry geometry
		)`
		if _, err := db.conn.Exec(ctx, sql); err != nil {
			return fmt.Errorf("create %s: %w", ds.Table(p), err)
		}
	}
	return nil
}

// Load reads every partition table into the dataset.
func (db *DB) Load(ctx context.Context, ds *store.Dataset) error {
	if err := db.EnsureSchema(ctx, ds); err != nil {
		return err
	}
	for _, p := range feature.Partitions {
		n, err := db.loadPartition(ctx, ds, p)
		if err != nil {
			return fmt.Errorf("load %s: %w", ds.Table(p), err)
		}
		db.log.WithFields(logrus.Fields{"table": ds.Table(p), "features": n}).Info("partition loaded")
	}
	return nil
}

func (db *DB) loadPartition(ctx context.Context, ds *store.Dataset, p feature.Partition) (int, error) {
	rows, err := db.conn.Query(ctx, `SELECT id, COALESCE(name, ''), COALESCE(type, ''), COALESCE(style, ''),
		ST_AsBinary(wkb_geometry) FROM `+table(ds, p)+` ORDER BY id`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	s := ds.Partition(p)
	n := 0
	for rows.Next() {
		var (
			f   feature.Feature
			raw string
			wkb []byte
		)
		if err := rows.Scan(&f.ID, &f.Name, &raw, &f.Style, &wkb); err != nil {
			return n, err
		}
		if f.Name == "" {
			f.Name = feature.DefaultName
		}
		if f.Type, err = feature.ParseType(raw); err != nil {
			return n, err
		}
		if wkb != nil {
			if f.Geometry, err = geometry.DecodeWKB(wkb); err != nil {
				return n, fmt.Errorf("feature %d: %w", f.ID, err)
			}
		}
		if err := s.Load(f); err != nil {
			return n, err
		}
		n++
	}
	return n, rows.Err()
}

// Commit applies the journal of every partition in a single transaction.
// Nothing is written when any statement fails.
func (db *DB) Commit(ctx context.Context, ds *store.Dataset) (err error) {
	tx, err := db.conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				db.log.WithError(rbErr).Warn("rollback failed")
			}
		}
	}()

	for _, p := range feature.Partitions {
		batch, counts, err := journalBatch(ds, p)
		if err != nil {
			return err
		}
		if batch.Len() == 0 {
			continue
		}
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("commit %s: %w", ds.Table(p), err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
		db.log.WithFields(logrus.Fields{
			"table":  ds.Table(p),
			"insert": counts[store.Insert],
			"modify": counts[store.Modify],
			"delete": counts[store.Delete],
		}).Info("partition committed")
	}
	return tx.Commit(ctx)
}

// journalBatch turns the journal of one partition into statements.
func journalBatch(ds *store.Dataset, p feature.Partition) (*pgx.Batch, map[store.Instruction]int, error) {
	s := ds.Partition(p)
	t := table(ds, p)
	batch := &pgx.Batch{}
	counts := make(map[store.Instruction]int)

	for _, c := range s.Changes() {
		counts[c.Instruction]++
		if c.Instruction == store.Delete {
			batch.Queue(`DELETE FROM `+t+` WHERE id = $1`, c.ID)
			continue
		}
		f, err := s.Get(c.ID)
		if err != nil {
			return nil, nil, err
		}
		var wkb []byte
		if !geometry.IsEmpty(f.Geometry) {
			if wkb, err = geometry.EncodeWKB(f.Geometry); err != nil {
				return nil, nil, fmt.Errorf("feature %d: %w", f.ID, err)
			}
		}
		switch c.Instruction {
		case store.Insert:
			batch.Queue(`INSERT INTO `+t+` (id, name, type, style, wkb_geometry)
				VALUES ($1, $2, $3, $4, ST_GeomFromWKB($5))`,
				f.ID, f.Name, f.Type.String(), f.Style, wkb)
		case store.Modify:
			batch.Queue(`UPDATE `+t+` SET name = $2, type = $3, style = $4, wkb_geometry = ST_GeomFromWKB($5)
				WHERE id = $1`,
				f.ID, f.Name, f.Type.String(), f.Style, wkb)
		}
	}
	return batch, counts, nil
}
