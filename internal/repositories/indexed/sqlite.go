package indexed

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/pkg/keylock"
	"github.com/KirkDiggler/rpg-charforge/internal/sqlite"
)

// SQLiteConfig configures the SQLite backend. DB is usually opened with
// sqlite.Open; the schema is migrated again when the store is created.
type SQLiteConfig struct {
	Config
	DB *sql.DB
}

// Validate validates the config.
func (c *SQLiteConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if err := c.Config.Validate(); err != nil {
		return err
	}
	if c.DB == nil {
		return errors.InvalidArgument("sqlite db is required")
	}
	return nil
}

// sqliteStore keeps payloads in records and the index in record_index. Get
// and List join the two tables so a payload is only visible while its id is
// indexed; every write touches both inside one transaction.
type sqliteStore[T Record[T]] struct {
	cfg   Config
	db    *sql.DB
	locks *keylock.Locker
}

// NewSQLite creates a SQLite-backed store.
func NewSQLite[T Record[T]](cfg *SQLiteConfig) (Store[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(cfg.DB); err != nil {
		return nil, err
	}
	return &sqliteStore[T]{
		cfg:   cfg.Config,
		db:    cfg.DB,
		locks: keylock.New(),
	}, nil
}

const (
	sqlSelectPayload = `
		SELECT r.payload FROM records r
		JOIN record_index i ON i.index_name = ? AND i.id = r.id
		WHERE r.entity_type = ? AND r.id = ?`

	sqlListPayloads = `
		SELECT r.payload FROM record_index i
		JOIN records r ON r.entity_type = ? AND r.id = i.id
		WHERE i.index_name = ?
		ORDER BY i.seq`
)

// inTx runs fn in a write transaction, committing when fn succeeds.
func (s *sqliteStore[T]) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (s *sqliteStore[T]) Create(ctx context.Context, record T) (T, error) {
	var zero T
	if err := checkRecord(s.cfg.EntityType, record); err != nil {
		return zero, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, err
	}
	ctx = context.WithoutCancel(ctx)
	id := record.GetID()

	unlock := s.locks.Lock(id)
	defer unlock()

	data, err := encode(record)
	if err != nil {
		return zero, err
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM records WHERE entity_type = ? AND id = ?`,
			s.cfg.EntityType, id).Scan(&exists)
		if err != nil {
			return errors.Wrap(err, "failed to check existence")
		}
		if exists > 0 {
			return errors.AlreadyExistsf("%s %s already exists", s.cfg.EntityType, id)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO records (entity_type, id, payload) VALUES (?, ?, ?)`,
			s.cfg.EntityType, id, data); err != nil {
			return errors.Wrap(err, "failed to insert record")
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO record_index (index_name, id, seq)
			SELECT ?, ?, COALESCE(MAX(seq), 0) + 1 FROM record_index WHERE index_name = ?`,
			s.cfg.IndexName, id, s.cfg.IndexName); err != nil {
			return errors.Wrap(err, "failed to index record")
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to create record",
			"entity_type", s.cfg.EntityType,
			"id", id,
			"error", err.Error())
		return zero, errors.Wrapf(err, "failed to create %s %s", s.cfg.EntityType, id)
	}

	slog.DebugContext(ctx, "record created", "entity_type", s.cfg.EntityType, "id", id)
	return decode[T](data)
}

func (s *sqliteStore[T]) Get(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, false, err
	}

	var data []byte
	err := s.db.QueryRowContext(ctx, sqlSelectPayload, s.cfg.IndexName, s.cfg.EntityType, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, false, nil
		}
		return zero, false, errors.Wrapf(err, "failed to get %s %s", s.cfg.EntityType, id)
	}

	out, err := decode[T](data)
	if err != nil {
		return zero, false, err
	}
	return out, true, nil
}

func (s *sqliteStore[T]) Mutate(ctx context.Context, id string, fn MutateFunc[T]) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return zero, err
	}
	ctx = context.WithoutCancel(ctx)

	unlock := s.locks.Lock(id)
	defer unlock()

	var written []byte
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var data []byte
		err := tx.QueryRowContext(ctx, sqlSelectPayload, s.cfg.IndexName, s.cfg.EntityType, id).Scan(&data)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errors.NotFoundf("%s %s not found", s.cfg.EntityType, id)
			}
			return errors.Wrapf(err, "failed to get %s %s", s.cfg.EntityType, id)
		}

		current, err := decode[T](data)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if isNil(next) {
			return errors.Internalf("mutation of %s %s returned no record", s.cfg.EntityType, id)
		}
		out, err := encode(next.WithID(id))
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET payload = ? WHERE entity_type = ? AND id = ?`,
			out, s.cfg.EntityType, id); err != nil {
			return errors.Wrap(err, "failed to update record")
		}
		written = out
		return nil
	})
	if err != nil {
		return zero, err
	}

	slog.DebugContext(ctx, "record mutated", "entity_type", s.cfg.EntityType, "id", id)
	return decode[T](written)
}

func (s *sqliteStore[T]) Update(ctx context.Context, id string, patch Patch[T]) (T, error) {
	return s.Mutate(ctx, id, patchMutation(id, patch))
}

func (s *sqliteStore[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	if err := errors.FromContext(ctx); err != nil {
		return false, err
	}
	ctx = context.WithoutCancel(ctx)

	unlock := s.locks.Lock(id)
	defer unlock()

	var existed bool
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`DELETE FROM records WHERE entity_type = ? AND id = ?`,
			s.cfg.EntityType, id)
		if err != nil {
			return errors.Wrap(err, "failed to delete record")
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Wrap(err, "failed to count deleted rows")
		}
		existed = n > 0

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM record_index WHERE index_name = ? AND id = ?`,
			s.cfg.IndexName, id); err != nil {
			return errors.Wrap(err, "failed to unindex record")
		}
		return nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to delete record",
			"entity_type", s.cfg.EntityType,
			"id", id,
			"error", err.Error())
		return false, errors.Wrapf(err, "failed to delete %s %s", s.cfg.EntityType, id)
	}

	slog.DebugContext(ctx, "record deleted", "entity_type", s.cfg.EntityType, "id", id, "existed", existed)
	return existed, nil
}

func (s *sqliteStore[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.db.QueryContext(ctx, sqlListPayloads, s.cfg.EntityType, s.cfg.IndexName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", s.cfg.IndexName)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "failed to scan record")
		}
		rec, err := decode[T](data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read index %s", s.cfg.IndexName)
	}

	slog.DebugContext(ctx, "listed records", "index", s.cfg.IndexName, "count", len(out))
	return out, nil
}
