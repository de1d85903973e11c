package client

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/KirkDiggler/rpg-charforge/internal/clients/portrait"
	portraitmock "github.com/KirkDiggler/rpg-charforge/internal/clients/portrait/mock"
	"github.com/KirkDiggler/rpg-charforge/internal/config"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
	characterorch "github.com/KirkDiggler/rpg-charforge/internal/orchestrators/character"
	characterrepo "github.com/KirkDiggler/rpg-charforge/internal/repositories/character"
	"github.com/KirkDiggler/rpg-charforge/internal/services/character"
	"github.com/KirkDiggler/rpg-charforge/internal/testutils"
)

var (
	pngImage  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	idPattern = regexp.MustCompile(`ID: (\S+)`)
)

// CommandsTestSuite runs the cobra commands against a live server on a
// loopback port
type CommandsTestSuite struct {
	suite.Suite

	ctrl               *gomock.Controller
	mockPortraitClient *portraitmock.MockClient
	orchestrator       *characterorch.Orchestrator
	srv                *grpc.Server
	out                *bytes.Buffer
}

func TestCommandsSuite(t *testing.T) {
	suite.Run(t, new(CommandsTestSuite))
}

func (s *CommandsTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockPortraitClient = portraitmock.NewMockClient(s.ctrl)

	repo, err := characterrepo.NewMemory()
	s.Require().NoError(err)

	s.orchestrator, err = characterorch.New(&characterorch.Config{
		CharacterRepo:  repo,
		PortraitClient: s.mockPortraitClient,
	})
	s.Require().NoError(err)

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{CharacterService: s.orchestrator})
	s.Require().NoError(err)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	s.srv = grpc.NewServer()
	v1alpha1.RegisterCharacterServiceServer(s.srv, handler)
	go func() { _ = s.srv.Serve(lis) }()

	UseConfig(&config.Config{Server: config.ServerConfig{Addr: lis.Addr().String()}})
	timeout = 5 * time.Second
	s.out = &bytes.Buffer{}
}

func (s *CommandsTestSuite) TearDownTest() {
	s.srv.Stop()
	s.ctrl.Finish()
}

func (s *CommandsTestSuite) run(args ...string) (string, error) {
	s.out.Reset()
	ClientCmd.SetOut(s.out)
	ClientCmd.SetErr(s.out)
	ClientCmd.SetArgs(args)
	err := ClientCmd.ExecuteContext(context.Background())
	return s.out.String(), err
}

func (s *CommandsTestSuite) store() string {
	created, err := s.orchestrator.CreateCharacter(context.Background(), &character.CreateCharacterInput{
		Character: testutils.CreateTestWizard(),
	})
	s.Require().NoError(err)
	return created.Character.ID
}

func (s *CommandsTestSuite) TestGalleryFlow() {
	out, err := s.run("create",
		"--race", "Human", "--class", "Fighter",
		"--score", "str=15", "--score", "dex=13", "--score", "con=14",
		"--score", "int=8", "--score", "wis=12", "--score", "cha=10",
		"--name", testutils.TestCharacterName, "--background", "Soldier",
		"--skill", "Perception", "--skill", "Survival",
	)
	s.Require().NoError(err)
	s.Contains(out, "Character created")
	match := idPattern.FindStringSubmatch(out)
	s.Require().Len(match, 2)
	id := match[1]

	out, err = s.run("list", "--json=false")
	s.Require().NoError(err)
	s.Contains(out, "1 characters")
	s.Contains(out, id)
	s.Contains(out, "Fighter")

	out, err = s.run("get", "--id", id, "--json")
	s.Require().NoError(err)
	s.Contains(out, `"dndClass"`)
	s.Contains(out, testutils.TestCharacterName)

	out, err = s.run("sheet", "--id", id, "--format", FormatMarkdown, "--out=")
	s.Require().NoError(err)
	s.Contains(out, "# "+testutils.TestCharacterName)
	s.Contains(out, "| Strength | 15 | +2 |")

	path := filepath.Join(s.T().TempDir(), "sheet.html")
	_, err = s.run("sheet", "--id", id, "--format", FormatHTML, "--out", path)
	s.Require().NoError(err)
	html, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Contains(string(html), "<h1")

	out, err = s.run("edit", "--id", id, "--name", "Thorin Stonehelm")
	s.Require().NoError(err)
	s.Contains(out, "Character updated")
	s.Contains(out, "Thorin Stonehelm")
	s.Contains(out, "ID: "+id)

	out, err = s.run("delete", "--id", id)
	s.Require().NoError(err)
	s.Contains(out, "Deleted "+id)

	_, err = s.run("get", "--id", id, "--json=false")
	s.Require().Error(err)
	s.Equal(codes.NotFound, status.Code(err))
	s.Contains(err.Error(), "character with ID "+id+" not found")
}

func (s *CommandsTestSuite) TestEmptyGallery() {
	out, err := s.run("list", "--json=false")
	s.Require().NoError(err)
	s.Contains(out, "No characters yet")
}

func (s *CommandsTestSuite) TestSheetRejectsUnknownFormat() {
	_, err := s.run("sheet", "--id", "char_1", "--format", "pdf", "--out=")
	s.Require().Error(err)
	s.Contains(err.Error(), "pdf")
}

func (s *CommandsTestSuite) TestGeneratePortrait() {
	s.mockPortraitClient.EXPECT().
		Generate(gomock.Any(), &portrait.GenerateInput{Prompt: characterorch.Prompt("Elf", "Wizard", "silver hair")}).
		Return(&portrait.GenerateOutput{Image: pngImage, ContentType: "image/png"}, nil)

	path := filepath.Join(s.T().TempDir(), "elf.png")
	out, err := s.run("portrait", "generate", "--race", "Elf", "--class", "Wizard", "--detail", "silver hair", "--out", path)
	s.Require().NoError(err)
	s.Contains(out, "image/png, 8 bytes")

	saved, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal(pngImage, saved)
}

func (s *CommandsTestSuite) TestRegeneratePortrait() {
	id := s.store()
	s.mockPortraitClient.EXPECT().
		Generate(gomock.Any(), gomock.Any()).
		Return(&portrait.GenerateOutput{Image: pngImage, ContentType: "image/png"}, nil)

	out, err := s.run("portrait", "regenerate", "--id", id, "--detail=", "--out=")
	s.Require().NoError(err)
	s.Contains(out, "Attached to "+testutils.TestWizardName)

	got, err := s.orchestrator.GetCharacter(context.Background(), &character.GetCharacterInput{CharacterID: id})
	s.Require().NoError(err)
	s.Equal("data:image/png;base64,iVBORw0KGgo=", got.Character.GeneratedImageURL)
}

func (s *CommandsTestSuite) TestAttachPortraitFromFile() {
	id := s.store()
	path := filepath.Join(s.T().TempDir(), "portrait.png")
	s.Require().NoError(os.WriteFile(path, pngImage, 0o600))

	out, err := s.run("portrait", "attach", "--id", id, "--image", path)
	s.Require().NoError(err)
	s.Contains(out, "Portrait attached")

	got, err := s.orchestrator.GetCharacter(context.Background(), &character.GetCharacterInput{CharacterID: id})
	s.Require().NoError(err)
	s.Equal("data:image/png;base64,iVBORw0KGgo=", got.Character.GeneratedImageURL)
}
