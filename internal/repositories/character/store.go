package character

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	redisclient "github.com/KirkDiggler/rpg-charforge/internal/redis"
	"github.com/KirkDiggler/rpg-charforge/internal/repositories/indexed"
)

// IndexName is the secondary index holding every live character id.
const IndexName = "characters"

// Backend names accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

const (
	errCharacterNil     = "character cannot be nil"
	errCharacterIDEmpty = "character ID cannot be empty"
)

var storeConfig = indexed.Config{
	EntityType: dnd5e.EntityTypeCharacter,
	IndexName:  IndexName,
}

type storeRepository struct {
	store indexed.Store[*dnd5e.Character]
}

var _ Repository = (*storeRepository)(nil)

// Config selects and configures a backend.
type Config struct {
	Backend string
	// Client is required for BackendRedis.
	Client redisclient.Client
	// DB is required for BackendSQLite.
	DB *sql.DB
}

// Validate validates the Config.
func (cfg *Config) Validate() error {
	if cfg == nil {
		return errors.InvalidArgument("config cannot be nil")
	}
	vb := errors.NewValidationBuilder()
	errors.ValidateEnum("backend", cfg.Backend, []string{BackendMemory, BackendRedis, BackendSQLite}, vb)
	switch cfg.Backend {
	case BackendRedis:
		if cfg.Client == nil {
			vb.RequiredField("client")
		}
	case BackendSQLite:
		if cfg.DB == nil {
			vb.RequiredField("db")
		}
	}
	return vb.Build()
}

// New creates a character repository on the configured backend.
func New(cfg *Config) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendRedis:
		return NewRedis(cfg.Client)
	case BackendSQLite:
		return NewSQLite(cfg.DB)
	default:
		return NewMemory()
	}
}

// NewMemory creates an in-process character repository.
func NewMemory() (Repository, error) {
	cfg := storeConfig
	store, err := indexed.NewMemory[*dnd5e.Character](&cfg)
	if err != nil {
		return nil, err
	}
	return &storeRepository{store: store}, nil
}

// NewRedis creates a Redis-backed character repository.
func NewRedis(client redisclient.Client) (Repository, error) {
	store, err := indexed.NewRedis[*dnd5e.Character](&indexed.RedisConfig{
		Config: storeConfig,
		Client: client,
	})
	if err != nil {
		return nil, err
	}
	return &storeRepository{store: store}, nil
}

// NewSQLite creates a SQLite-backed character repository.
func NewSQLite(db *sql.DB) (Repository, error) {
	store, err := indexed.NewSQLite[*dnd5e.Character](&indexed.SQLiteConfig{
		Config: storeConfig,
		DB:     db,
	})
	if err != nil {
		return nil, err
	}
	return &storeRepository{store: store}, nil
}

func (r *storeRepository) Create(ctx context.Context, input CreateInput) (*CreateOutput, error) {
	if input.Character == nil {
		return nil, errors.InvalidArgument(errCharacterNil)
	}
	if input.Character.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	created, err := r.store.Create(ctx, input.Character)
	if err != nil {
		return nil, err
	}
	return &CreateOutput{Character: created}, nil
}

func (r *storeRepository) Get(ctx context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	found, ok, err := r.store.Get(ctx, input.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get character")
	}
	if !ok {
		return nil, errors.NotFoundf("character with ID %s not found", input.ID)
	}
	return &GetOutput{Character: found}, nil
}

func (r *storeRepository) Mutate(ctx context.Context, input MutateInput) (*MutateOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}
	if input.Fn == nil {
		return nil, errors.InvalidArgument("mutate function cannot be nil")
	}

	updated, err := r.store.Mutate(ctx, input.ID, indexed.MutateFunc[*dnd5e.Character](input.Fn))
	if err != nil {
		return nil, err
	}
	return &MutateOutput{Character: updated}, nil
}

func (r *storeRepository) Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errCharacterIDEmpty)
	}

	existed, err := r.store.Delete(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, errors.NotFoundf("character with ID %s not found", input.ID)
	}

	slog.InfoContext(ctx, "character deleted", "character_id", input.ID)
	return &DeleteOutput{}, nil
}

func (r *storeRepository) List(ctx context.Context, _ ListInput) (*ListOutput, error) {
	characters, err := r.store.List(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list characters")
	}
	return &ListOutput{Characters: characters}, nil
}
