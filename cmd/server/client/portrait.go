package client

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-charforge/internal/entities/dnd5e"
	"github.com/KirkDiggler/rpg-charforge/internal/errors"
	"github.com/KirkDiggler/rpg-charforge/internal/handlers/characters/v1alpha1"
)

var (
	portraitID       string
	portraitRace     string
	portraitClass    string
	portraitDetail   string
	portraitOut      string
	portraitImageURL string
	portraitImage    string
)

var portraitCmd = &cobra.Command{
	Use:   "portrait",
	Short: "Generate and attach character portraits",
}

var generatePortraitCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a portrait for a race and class without storing it",
	RunE:  runGeneratePortrait,
}

var attachPortraitCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach an image to a stored character",
	RunE:  runAttachPortrait,
}

var regeneratePortraitCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Generate a new portrait for a stored character and attach it",
	RunE:  runRegeneratePortrait,
}

func init() {
	generatePortraitCmd.Flags().StringVar(&portraitRace, "race", "", "Race name (required)")
	generatePortraitCmd.Flags().StringVar(&portraitClass, "class", "", "Class name (required)")
	generatePortraitCmd.Flags().StringVar(&portraitDetail, "detail", "", "Extra prompt detail")
	generatePortraitCmd.Flags().StringVarP(&portraitOut, "out", "o", "", "Write the image to a file")
	_ = generatePortraitCmd.MarkFlagRequired("race")  // nolint:errcheck // safe to ignore in init
	_ = generatePortraitCmd.MarkFlagRequired("class") // nolint:errcheck // safe to ignore in init

	attachPortraitCmd.Flags().StringVar(&portraitID, "id", "", "Character ID (required)")
	attachPortraitCmd.Flags().StringVar(&portraitImageURL, "image-url", "", "Image URL to store")
	attachPortraitCmd.Flags().StringVar(&portraitImage, "image", "", "Image file to store as a data URL")
	attachPortraitCmd.MarkFlagsOneRequired("image-url", "image")
	attachPortraitCmd.MarkFlagsMutuallyExclusive("image-url", "image")
	_ = attachPortraitCmd.MarkFlagRequired("id") // nolint:errcheck // safe to ignore in init

	regeneratePortraitCmd.Flags().StringVar(&portraitID, "id", "", "Character ID (required)")
	regeneratePortraitCmd.Flags().StringVar(&portraitDetail, "detail", "", "Extra prompt detail")
	regeneratePortraitCmd.Flags().StringVarP(&portraitOut, "out", "o", "", "Write the image to a file")
	_ = regeneratePortraitCmd.MarkFlagRequired("id") // nolint:errcheck // safe to ignore in init

	portraitCmd.AddCommand(generatePortraitCmd)
	portraitCmd.AddCommand(attachPortraitCmd)
	portraitCmd.AddCommand(regeneratePortraitCmd)
}

func runGeneratePortrait(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	body, err := v1alpha1.RequestToStruct(&v1alpha1.GeneratePortraitRequest{
		RaceName:  portraitRace,
		ClassName: portraitClass,
		Detail:    portraitDetail,
	})
	if err != nil {
		return err
	}
	resp, err := client.GeneratePortrait(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to generate portrait: %w", err)
	}

	var p v1alpha1.Portrait
	if err := v1alpha1.DecodeStruct(resp, &p); err != nil {
		return err
	}
	return reportPortrait(cmd.OutOrStdout(), &p, portraitOut)
}

func runAttachPortrait(cmd *cobra.Command, _ []string) error {
	url := portraitImageURL
	if portraitImage != "" {
		data, err := os.ReadFile(portraitImage)
		if err != nil {
			return fmt.Errorf("failed to read image: %w", err)
		}
		url = dnd5e.ImageDataURL(http.DetectContentType(data), data)
	}

	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	body, err := v1alpha1.RequestToStruct(&v1alpha1.AttachPortraitRequest{ID: portraitID, ImageURL: url})
	if err != nil {
		return err
	}
	resp, err := client.AttachPortrait(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to attach portrait: %w", err)
	}
	char, err := v1alpha1.CharacterFromStruct(resp)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "🖼️  Portrait attached to %s (%s)\n", char.Name, char.ID)
	return nil
}

func runRegeneratePortrait(cmd *cobra.Command, _ []string) error {
	client, cleanup, err := createCharacterClient()
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := requestContext(cmd)
	defer cancel()

	body, err := v1alpha1.RequestToStruct(&v1alpha1.RegeneratePortraitRequest{ID: portraitID, Detail: portraitDetail})
	if err != nil {
		return err
	}
	resp, err := client.RegeneratePortrait(ctx, body)
	if err != nil {
		return fmt.Errorf("failed to regenerate portrait: %w", err)
	}

	var out v1alpha1.RegeneratedPortrait
	if err := v1alpha1.DecodeStruct(resp, &out); err != nil {
		return err
	}
	if err := reportPortrait(cmd.OutOrStdout(), out.Portrait, portraitOut); err != nil {
		return err
	}
	if out.Character != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "Attached to %s (%s)\n", out.Character.Name, out.Character.ID)
	}
	return nil
}

// reportPortrait prints the result and saves the image when path is set
func reportPortrait(w io.Writer, p *v1alpha1.Portrait, path string) error {
	if p == nil {
		return errors.Internal("response has no portrait")
	}

	fmt.Fprintf(w, "🎨 Portrait %s\n", p.RequestID)
	fmt.Fprintf(w, "Prompt: %s\n", p.Prompt)

	_, image, err := dnd5e.ParseImageDataURL(p.ImageURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Image: %s, %d bytes\n", p.ContentType, len(image))

	if path == "" {
		return nil
	}
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	fmt.Fprintf(w, "Saved to %s\n", path)
	return nil
}
