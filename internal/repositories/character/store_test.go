package character_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	character "github.com/KirkDiggler/rpg-charforge/internal/repositories/character"
	"github.com/KirkDiggler/rpg-charforge/internal/sqlite"
	"github.com/KirkDiggler/rpg-charforge/internal/testutils"
)

const testCharID = "char_123"

type RepositoryTestSuite struct {
	suite.Suite
	backend string
	repo    character.Repository
	ctx     context.Context
}

func (s *RepositoryTestSuite) SetupTest() {
	s.ctx = context.Background()
	cfg := &character.Config{Backend: s.backend}
	switch s.backend {
	case character.BackendRedis:
		client, cleanup := testutils.CreateTestRedisClient(s.T())
		s.T().Cleanup(cleanup)
		cfg.Client = client
	case character.BackendSQLite:
		db, err := sqlite.Open(filepath.Join(s.T().TempDir(), "charforge.db"))
		s.Require().NoError(err)
		s.T().Cleanup(func() { _ = db.Close() })
		cfg.DB = db
	}

	repo, err := character.New(cfg)
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RepositoryTestSuite) testCharacter() *dnd5e.Character {
	c := dnd5e.NewCharacter()
	c.ID = testCharID
	c.Name = "Test Hero"
	return c
}

func (s *RepositoryTestSuite) TestCreate() {
	s.Run("successful create", func() {
		out, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
		s.Require().NoError(err)
		s.Equal(testCharID, out.Character.ID)
	})

	s.Run("duplicate id", func() {
		_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
		s.True(errors.IsAlreadyExists(err))
	})

	s.Run("nil character", func() {
		_, err := s.repo.Create(s.ctx, character.CreateInput{})
		s.True(errors.IsInvalidArgument(err))
	})

	s.Run("empty id", func() {
		c := s.testCharacter()
		c.ID = ""
		_, err := s.repo.Create(s.ctx, character.CreateInput{Character: c})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *RepositoryTestSuite) TestGet() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	s.Run("found", func() {
		out, err := s.repo.Get(s.ctx, character.GetInput{ID: testCharID})
		s.Require().NoError(err)
		s.Equal("Test Hero", out.Character.Name)
	})

	s.Run("not found", func() {
		_, err := s.repo.Get(s.ctx, character.GetInput{ID: "nonexistent"})
		s.True(errors.IsNotFound(err))
	})

	s.Run("empty id", func() {
		_, err := s.repo.Get(s.ctx, character.GetInput{})
		s.True(errors.IsInvalidArgument(err))
	})
}

func (s *RepositoryTestSuite) TestMutate() {
	_, err := s.repo.Create(s.ctx, character.CreateInput{Character: s.testCharacter()})
	s.Require().NoError(err)

	out, err := s.repo.Mutate(s.ctx, character.MutateInput{
		ID: testCharID,
		Fn: func(c *dnd5e.Character) (*dnd5e.Character, error) {
			c.UpdatedAt = 42
			return c, nil
		},
	})
	s.Require().NoError(err)
	s.Equal(int64(42), out.Character.UpdatedAt)

	_, err = s.repo.Mutate(s.ctx, character.MutateInput{ID: testCharID})
	s.True(errors.IsInvalidArgument(err))

	_, err = s.repo.Mutate(s.ctx, character.MutateInput{
		ID: "nonexistent",
		Fn: func(c *dnd5e.Character) (*dnd5e.Character, error) { return c, nil },
	})
	s.True(errors.IsNotFound(err))
}

func (s *RepositoryTestSuite) TestDeleteAndList() {
	first := s.testCharacter()
	second := s.testCharacter()
	second.ID = "char_456"
	for _, c := range []*dnd5e.Character{first, second} {
		_, err := s.repo.Create(s.ctx, character.CreateInput{Character: c})
		s.Require().NoError(err)
	}

	list, err := s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(list.Characters, 2)
	s.Equal(testCharID, list.Characters[0].ID)
	s.Equal("char_456", list.Characters[1].ID)

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: testCharID})
	s.Require().NoError(err)

	_, err = s.repo.Delete(s.ctx, character.DeleteInput{ID: testCharID})
	s.True(errors.IsNotFound(err))

	list, err = s.repo.List(s.ctx, character.ListInput{})
	s.Require().NoError(err)
	s.Require().Len(list.Characters, 1)
	s.Equal("char_456", list.Characters[0].ID)
}

func TestMemoryRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{backend: character.BackendMemory})
}

func TestRedisRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{backend: character.BackendRedis})
}

func TestSQLiteRepository(t *testing.T) {
	suite.Run(t, &RepositoryTestSuite{backend: character.BackendSQLite})
}

func TestConfigValidation(t *testing.T) {
	cases := map[string]*character.Config{
		"nil":             nil,
		"unknown backend": {Backend: "etcd"},
		"redis no client": {Backend: character.BackendRedis},
		"sqlite no db":    {Backend: character.BackendSQLite},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := character.New(cfg); !errors.IsInvalidArgument(err) {
				t.Fatalf("expected invalid argument, got %v", err)
			}
		})
	}
}
