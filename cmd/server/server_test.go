package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/KirkDiggler/rpg-charforge/internal/config"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
	"github.com/KirkDiggler/rpg-charforge/internal/testutils"
)

type ServerTestSuite struct {
	suite.Suite

	ctx    context.Context
	cancel context.CancelFunc
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 10*time.Second)
}

func (s *ServerTestSuite) TearDownTest() {
	s.cancel()
}

func (s *ServerTestSuite) loadConfig(backend string) *config.Config {
	v := config.New()
	v.Set("store.backend", backend)
	v.Set("sqlite.path", filepath.Join(s.T().TempDir(), "charforge.db"))
	if backend == config.BackendRedis {
		v.Set("redis.addr", miniredis.RunT(s.T()).Addr())
	}
	loaded, err := config.Load(v, "")
	s.Require().NoError(err)
	return loaded
}

// serve starts the wired server on an in-memory listener
func (s *ServerTestSuite) serve(cfg *config.Config) (*grpc.ClientConn, *health.Server) {
	srv, healthServer, closeStore, err := newServer(s.ctx, cfg)
	s.Require().NoError(err)

	lis := bufconn.Listen(1024 * 1024)
	go func() { _ = srv.Serve(lis) }()
	s.T().Cleanup(func() {
		srv.Stop()
		closeStore()
	})

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = conn.Close() })
	return conn, healthServer
}

func (s *ServerTestSuite) TestHealth() {
	conn, healthServer := s.serve(s.loadConfig(config.BackendMemory))
	healthClient := grpc_health_v1.NewHealthClient(conn)

	resp, err := healthClient.Check(s.ctx, &grpc_health_v1.HealthCheckRequest{Service: v1alpha1.ServiceName})
	s.Require().NoError(err)
	s.Equal(grpc_health_v1.HealthCheckResponse_SERVING, resp.Status)

	healthServer.Shutdown()
	resp, err = healthClient.Check(s.ctx, &grpc_health_v1.HealthCheckRequest{Service: v1alpha1.ServiceName})
	s.Require().NoError(err)
	s.Equal(grpc_health_v1.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func (s *ServerTestSuite) TestCharacterLifecycle() {
	for _, backend := range []string{config.BackendMemory, config.BackendRedis, config.BackendSQLite} {
		s.Run(backend, func() {
			conn, _ := s.serve(s.loadConfig(backend))
			client := v1alpha1.NewCharacterServiceClient(conn)

			body, err := v1alpha1.CharacterToStruct(testutils.CreateTestWizard())
			s.Require().NoError(err)
			createdStruct, err := client.CreateCharacter(s.ctx, body)
			s.Require().NoError(err)
			created, err := v1alpha1.CharacterFromStruct(createdStruct)
			s.Require().NoError(err)
			s.NotEmpty(created.ID)
			s.Equal(testutils.TestWizardName, created.Name)

			listStruct, err := client.ListCharacters(s.ctx, &emptypb.Empty{})
			s.Require().NoError(err)
			listed, err := v1alpha1.CharactersFromStruct(listStruct)
			s.Require().NoError(err)
			s.Require().Len(listed, 1)
			s.Equal(created.ID, listed[0].ID)

			_, err = client.DeleteCharacter(s.ctx, wrapperspb.String(created.ID))
			s.Require().NoError(err)

			_, err = client.GetCharacter(s.ctx, wrapperspb.String(created.ID))
			s.Equal(codes.NotFound, status.Code(err))
		})
	}
}

func (s *ServerTestSuite) TestPortraitUnconfigured() {
	conn, _ := s.serve(s.loadConfig(config.BackendMemory))
	client := v1alpha1.NewCharacterServiceClient(conn)

	body, err := v1alpha1.RequestToStruct(&v1alpha1.GeneratePortraitRequest{RaceName: "Elf", ClassName: "Wizard"})
	s.Require().NoError(err)

	_, err = client.GeneratePortrait(s.ctx, body)
	s.Equal(codes.Unavailable, status.Code(err))
}

func (s *ServerTestSuite) TestUnknownBackend() {
	cfg := s.loadConfig(config.BackendMemory)
	cfg.Store.Backend = "etcd"

	_, _, _, err := newServer(s.ctx, cfg)
	s.Error(err)
}

func (s *ServerTestSuite) TestBoundFlags() {
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().Int("port", 0, "")
	cmd.Flags().String("store", "", "")

	s.Equal(map[string]string{
		"server.port":   "port",
		"store.backend": "store",
	}, boundFlags(cmd))
}

func (s *ServerTestSuite) TestNewLogger() {
	var buf bytes.Buffer
	logger := newLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)

	logger.Info("dropped")
	logger.Warn("kept", "character_id", "char_1")

	var line map[string]any
	s.Require().NoError(json.Unmarshal(buf.Bytes(), &line))
	s.Equal("kept", line["msg"])
	s.Equal("char_1", line["character_id"])
}
