package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/pipeline"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/publish"
)

var (
	generateTone        string
	generateAudience    string
	generateModel       string
	generateBackend     string
	generateImageSource string
	generateImageURL    string
	generatePublishTo   string
	generateAsDraft     bool
	generateAccessToken string
	generateJSONOut     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [topic or YouTube URL]",
	Short: "Generate one blog post from a topic or a YouTube URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		if generateBackend != "" {
			cfg.AI.PreferredBackend = generateBackend
		}
		p := pipeline.New(cfg)

		req := pipeline.Request{
			Seed:        args[0],
			Tone:        generateTone,
			Audience:    generateAudience,
			Model:       generateModel,
			ImageSource: core.ImageSource(generateImageSource),
			ImageURL:    generateImageURL,
		}

		res, err := p.Run(cmd.Context(), req)
		if err != nil {
			for _, a := range res.Attempts {
				fmt.Fprintf(os.Stderr, "  attempt %d [%s]: %s %s\n", a.Number, a.Backend, a.Outcome, a.Detail)
			}
			return err
		}

		if generatePublishTo != "" {
			receipt, err := publishPost(cmd, cfg, res.Post)
			if err != nil {
				return fmt.Errorf("post generated but publish failed: %w", err)
			}
			fmt.Printf("Published to %s: %s\n", receipt.Platform, receipt.URL)
		}

		if generateJSONOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		fmt.Printf("Title:   %s\n", res.Post.Title)
		fmt.Printf("Summary: %s\n", res.Post.Summary)
		fmt.Printf("Backend: %s (%s)\n", res.Post.Backend, res.Post.ModelUsed)
		if res.Post.ImageURL != "" {
			fmt.Printf("Image:   %s (%s)\n", res.Post.ImageURL, res.Post.ImageSource)
		}
		fmt.Println()
		fmt.Println(res.Post.Content)
		return nil
	},
}

// publishPost pushes the finished post to the platform named by --publish.
func publishPost(cmd *cobra.Command, cfg *config.Config, post core.Post) (publish.Receipt, error) {
	var (
		publisher publish.Publisher
		err       error
	)
	switch generatePublishTo {
	case "blogger":
		publisher, err = publish.NewBlogger(cfg.Publish.Blogger, generateAccessToken, generateAsDraft)
	case "wordpress":
		publisher, err = publish.NewWordPress(cfg.Publish.WordPress, generateAsDraft)
	default:
		return publish.Receipt{}, fmt.Errorf("unsupported publish platform: %q", generatePublishTo)
	}
	if err != nil {
		return publish.Receipt{}, err
	}
	return publisher.Publish(cmd.Context(), post)
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateTone, "tone", "", "writing tone (default from config)")
	generateCmd.Flags().StringVar(&generateAudience, "audience", "", "target audience (default from config)")
	generateCmd.Flags().StringVar(&generateModel, "model", "", "model identifier override")
	generateCmd.Flags().StringVar(&generateBackend, "backend", "", "preferred backend: gemini, openai or gptoss")
	generateCmd.Flags().StringVar(&generateImageSource, "image-source", "", "image source: none, pexels or upload")
	generateCmd.Flags().StringVar(&generateImageURL, "image-url", "", "image URL used with --image-source=upload")
	generateCmd.Flags().StringVar(&generatePublishTo, "publish", "", "publish the result: blogger or wordpress")
	generateCmd.Flags().BoolVar(&generateAsDraft, "draft", false, "publish as a draft")
	generateCmd.Flags().StringVar(&generateAccessToken, "access-token", "", "OAuth access token for Blogger")
	generateCmd.Flags().BoolVar(&generateJSONOut, "json", false, "print the full result as JSON")
}
