package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-charforge/internal/config"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
)

type ConfigTestSuite struct {
	suite.Suite
	dir string
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
}

func (s *ConfigTestSuite) write(name, content string) string {
	path := filepath.Join(s.dir, name)
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigTestSuite) TestDefaults() {
	cfg, err := config.Load(config.New(), "")
	s.Require().NoError(err)

	s.Equal(50051, cfg.Server.Port)
	s.Equal(30*time.Second, cfg.Server.ShutdownTimeout)
	s.Equal("info", cfg.Log.Level)
	s.Equal("text", cfg.Log.Format)
	s.Equal(config.BackendMemory, cfg.Store.Backend)
	s.Equal(60*time.Second, cfg.Portrait.Timeout)
	s.Empty(cfg.Portrait.Endpoint)
	s.Empty(cfg.OTel.Endpoint)
}

func (s *ConfigTestSuite) TestYAMLFile() {
	path := s.write("charforge.yaml", `
server:
  port: 6000
store:
  backend: sqlite
sqlite:
  path: /var/lib/charforge/characters.db
portrait:
  endpoint: https://api.example.com/ai/run
  timeout: 15s
`)

	cfg, err := config.Load(config.New(), path)
	s.Require().NoError(err)
	s.Equal(6000, cfg.Server.Port)
	s.Equal(config.BackendSQLite, cfg.Store.Backend)
	s.Equal("/var/lib/charforge/characters.db", cfg.SQLite.Path)
	s.Equal(15*time.Second, cfg.Portrait.Timeout)
}

func (s *ConfigTestSuite) TestEnvironmentOverridesFile() {
	path := s.write("charforge.yaml", "store:\n  backend: sqlite\n")
	s.T().Setenv("CHARFORGE_STORE_BACKEND", "redis")
	s.T().Setenv("CHARFORGE_REDIS_ADDR", "redis.internal:6380")
	s.T().Setenv("CHARFORGE_PORTRAIT_TOKEN", "secret")

	cfg, err := config.Load(config.New(), path)
	s.Require().NoError(err)
	s.Equal(config.BackendRedis, cfg.Store.Backend)
	s.Equal("redis.internal:6380", cfg.Redis.Addr)
	s.Equal("secret", cfg.Portrait.Token)
}

func (s *ConfigTestSuite) TestFlagsOverrideEnvironment() {
	s.T().Setenv("CHARFORGE_SERVER_PORT", "7000")

	cmd := &cobra.Command{Use: "server"}
	cmd.Flags().Int("port", 50051, "")
	s.Require().NoError(cmd.Flags().Set("port", "7001"))

	v := config.New()
	s.Require().NoError(config.BindFlags(v, cmd, map[string]string{"server.port": "port"}))

	cfg, err := config.Load(v, "")
	s.Require().NoError(err)
	s.Equal(7001, cfg.Server.Port)
}

func (s *ConfigTestSuite) TestBindFlags_UnknownFlag() {
	err := config.BindFlags(config.New(), &cobra.Command{}, map[string]string{"server.port": "nope"})
	s.Error(err)
}

func (s *ConfigTestSuite) TestValidationCollectsEveryProblem() {
	path := s.write("bad.yaml", `
server:
  port: 0
log:
  level: loud
  format: xml
store:
  backend: sqlite
sqlite:
  path: ""
`)

	_, err := config.Load(config.New(), path)
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))

	fields := errors.ValidationFields(err)
	s.Contains(fields, "server.port")
	s.Contains(fields, "log.level")
	s.Contains(fields, "log.format")
	s.Contains(fields, "sqlite.path")
}

func (s *ConfigTestSuite) TestUnknownBackend() {
	s.T().Setenv("CHARFORGE_STORE_BACKEND", "postgres")

	_, err := config.Load(config.New(), "")
	s.Require().Error(err)
	s.Contains(errors.ValidationFields(err), "store.backend")
}

func (s *ConfigTestSuite) TestMissingConfigFile() {
	_, err := config.Load(config.New(), filepath.Join(s.dir, "absent.yaml"))
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *ConfigTestSuite) TestDotEnv() {
	const key = "CHARFORGE_PORTRAIT_MODEL"
	s.T().Setenv(key, "")
	s.Require().NoError(os.Unsetenv(key))

	path := s.write(".env", key+"=@cf/lykon/dreamshaper-8-lcm\n")
	s.Require().NoError(config.LoadDotEnv(path, filepath.Join(s.dir, "missing.env")))

	cfg, err := config.Load(config.New(), "")
	s.Require().NoError(err)
	s.Equal("@cf/lykon/dreamshaper-8-lcm", cfg.Portrait.Model)
}

func (s *ConfigTestSuite) TestDotEnvKeepsExistingVariables() {
	const key = "CHARFORGE_LOG_LEVEL"
	s.T().Setenv(key, "debug")

	path := s.write(".env", key+"=error\n")
	s.Require().NoError(config.LoadDotEnv(path))

	cfg, err := config.Load(config.New(), "")
	s.Require().NoError(err)
	s.Equal("debug", cfg.Log.Level)
}
