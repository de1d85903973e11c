package indexed_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/repositories/indexed"
	"github.com/KirkDiggler/rpg-charforge/internal/testutils"
)

// RedisFailureTestSuite drives the redis backend against scripted replies.
type RedisFailureTestSuite struct {
	suite.Suite
	mockClient *redis.Client
	mock       redismock.ClientMock
	store      characterStore
	ctx        context.Context
}

func (s *RedisFailureTestSuite) SetupTest() {
	s.mockClient, s.mock = redismock.NewClientMock()
	s.ctx = context.Background()

	store, err := indexed.NewRedis[*dnd5e.Character](&indexed.RedisConfig{
		Config: storeConfig,
		Client: s.mockClient,
	})
	s.Require().NoError(err)
	s.store = store
}

func (s *RedisFailureTestSuite) TearDownTest() {
	s.NoError(s.mock.ExpectationsWereMet())
}

func (s *RedisFailureTestSuite) payload(c *dnd5e.Character) string {
	data, err := json.Marshal(c)
	s.Require().NoError(err)
	return string(data)
}

func (s *RedisFailureTestSuite) TestGetMissingKey() {
	s.mock.ExpectGet("character:c1").RedisNil()

	got, found, err := s.store.Get(s.ctx, "c1")
	s.Require().NoError(err)
	s.False(found)
	s.Nil(got)
}

func (s *RedisFailureTestSuite) TestGetConnectionError() {
	s.mock.ExpectGet("character:c1").SetErr(fmt.Errorf("connection reset"))

	_, found, err := s.store.Get(s.ctx, "c1")
	s.Require().Error(err)
	s.False(found)
	s.True(errors.IsInternal(err))
	s.Contains(err.Error(), "character:c1")
}

func (s *RedisFailureTestSuite) TestGetCorruptPayload() {
	s.mock.ExpectGet("character:c1").SetVal("{not json")

	_, _, err := s.store.Get(s.ctx, "c1")
	s.Require().Error(err)
	s.Contains(err.Error(), "decode")
}

func (s *RedisFailureTestSuite) TestCreateFailsToAllocateSequence() {
	s.mock.ExpectIncr("characters:seq").SetErr(fmt.Errorf("READONLY replica"))

	_, err := s.store.Create(s.ctx, character("c1", "Aria"))
	s.Require().Error(err)
	s.Contains(err.Error(), "index position")
}

func (s *RedisFailureTestSuite) TestListIndexError() {
	s.mock.ExpectZRange("characters", 0, -1).SetErr(fmt.Errorf("timeout"))

	_, err := s.store.List(s.ctx)
	s.Require().Error(err)
	s.Contains(err.Error(), "characters")
}

func (s *RedisFailureTestSuite) TestListSkipsIndexEntriesWithoutPayload() {
	s.mock.ExpectZRange("characters", 0, -1).SetVal([]string{"c1", "c2", "c3"})
	s.mock.ExpectMGet("character:c1", "character:c2", "character:c3").SetVal([]interface{}{
		s.payload(character("c1", "Aria")),
		nil,
		s.payload(character("c3", "Cato")),
	})

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"c1", "c3"}, s.ids(all))
}

func (s *RedisFailureTestSuite) ids(records []*dnd5e.Character) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func (s *RedisFailureTestSuite) TestListMGetError() {
	s.mock.ExpectZRange("characters", 0, -1).SetVal([]string{"c1"})
	s.mock.ExpectMGet("character:c1").SetErr(fmt.Errorf("broken pipe"))

	_, err := s.store.List(s.ctx)
	s.Require().Error(err)
}

func TestRedisFailureTestSuite(t *testing.T) {
	suite.Run(t, new(RedisFailureTestSuite))
}

// RedisLayoutTestSuite checks the key layout against a real protocol server.
type RedisLayoutTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	store   characterStore
	ctx     context.Context
	cleanup func()
}

func (s *RedisLayoutTestSuite) SetupTest() {
	client, mr, cleanup := testutils.CreateTestRedisServer(s.T())
	s.mr = mr
	s.cleanup = cleanup
	s.ctx = context.Background()

	store, err := indexed.NewRedis[*dnd5e.Character](&indexed.RedisConfig{
		Config: storeConfig,
		Client: client,
	})
	s.Require().NoError(err)
	s.store = store
}

func (s *RedisLayoutTestSuite) TearDownTest() {
	s.cleanup()
}

func (s *RedisLayoutTestSuite) TestKeysAndIndex() {
	_, err := s.store.Create(s.ctx, character("c1", "Aria"))
	s.Require().NoError(err)
	_, err = s.store.Create(s.ctx, character("c2", "Bryn"))
	s.Require().NoError(err)

	s.True(s.mr.Exists("character:c1"))
	s.True(s.mr.Exists("character:c2"))

	members, err := s.mr.ZMembers("characters")
	s.Require().NoError(err)
	s.ElementsMatch([]string{"c1", "c2"}, members)

	first, err := s.mr.ZScore("characters", "c1")
	s.Require().NoError(err)
	second, err := s.mr.ZScore("characters", "c2")
	s.Require().NoError(err)
	s.Less(first, second)

	_, err = s.store.Delete(s.ctx, "c1")
	s.Require().NoError(err)
	s.False(s.mr.Exists("character:c1"))
	members, err = s.mr.ZMembers("characters")
	s.Require().NoError(err)
	s.Equal([]string{"c2"}, members)
}

func (s *RedisLayoutTestSuite) TestKeyHelpersMatchStoredKeys() {
	_, err := s.store.Create(s.ctx, character("c1", "Aria"))
	s.Require().NoError(err)

	key := indexed.RecordKey(storeConfig.EntityType, "c1")
	seq := indexed.SeqKey(storeConfig.IndexName)
	s.Equal([]string{key, storeConfig.IndexName, seq}, s.mr.Keys())

	seqVal, err := s.mr.Get(seq)
	s.Require().NoError(err)
	s.Equal("1", seqVal)

	var payloads []string
	for _, k := range s.mr.Keys() {
		if ok, _ := path.Match(indexed.RecordPattern(storeConfig.EntityType), k); ok {
			payloads = append(payloads, k)
		}
	}
	s.Equal([]string{key}, payloads)

	id, ok := indexed.RecordID(storeConfig.EntityType, key)
	s.True(ok)
	s.Equal("c1", id)
	for _, other := range []string{storeConfig.IndexName, seq} {
		_, ok = indexed.RecordID(storeConfig.EntityType, other)
		s.False(ok, other)
	}
}

func (s *RedisLayoutTestSuite) TestPayloadRemovedByHand() {
	_, err := s.store.Create(s.ctx, character("c1", "Aria"))
	s.Require().NoError(err)
	_, err = s.store.Create(s.ctx, character("c2", "Bryn"))
	s.Require().NoError(err)

	s.mr.Del("character:c1")

	all, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 1)
	s.Equal("c2", all[0].ID)

	_, found, err := s.store.Get(s.ctx, "c1")
	s.Require().NoError(err)
	s.False(found)
}

func (s *RedisLayoutTestSuite) TestCreateOverStrayPayload() {
	s.Require().NoError(s.mr.Set("character:c1", `{"id":"c1"}`))

	_, err := s.store.Create(s.ctx, character("c1", "Aria"))
	s.True(errors.IsAlreadyExists(err))
}

func TestRedisLayoutTestSuite(t *testing.T) {
	suite.Run(t, new(RedisLayoutTestSuite))
}
