package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/core"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/pipeline"
)

var (
	batchTone        string
	batchAudience    string
	batchImageSource string
	batchDelay       string
)

var batchCmd = &cobra.Command{
	Use:   "batch [seeds file]",
	Short: "Generate posts for every seed in a file, one per line",
	Long: `Reads seeds (topics or YouTube URLs) from the given file, one per line,
and generates a post for each. Blank lines and lines starting with # are
skipped. Items run sequentially with a delay between them.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		seeds, err := readSeeds(args[0])
		if err != nil {
			return err
		}
		if len(seeds) == 0 {
			return fmt.Errorf("no seeds found in %s", args[0])
		}

		requests := make([]pipeline.Request, 0, len(seeds))
		for _, seed := range seeds {
			requests = append(requests, pipeline.Request{
				Seed:        seed,
				Tone:        batchTone,
				Audience:    batchAudience,
				ImageSource: core.ImageSource(batchImageSource),
			})
		}

		delay := cfg.Batch.Delay
		if batchDelay != "" {
			delay = batchDelay
		}

		runner := pipeline.NewBatchRunner(pipeline.New(cfg), config.Duration(delay, 5*time.Second))
		results := runner.Run(cmd.Context(), requests)

		var failed int
		for _, res := range results {
			if res.Err != "" {
				failed++
				fmt.Fprintf(os.Stderr, "FAIL %s: %s\n", res.Request.Seed, res.Err)
				continue
			}
			fmt.Printf("OK   %s -> %s\n", res.Request.Seed, res.Result.Post.Title)
		}

		fmt.Printf("\n%d generated, %d failed\n", len(results)-failed, failed)
		if failed > 0 {
			return fmt.Errorf("%d of %d batch items failed", failed, len(results))
		}
		return nil
	},
}

// readSeeds loads one seed per line, skipping blanks and # comments.
func readSeeds(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open seeds file: %w", err)
	}
	defer f.Close()

	var seeds []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		seeds = append(seeds, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seeds file: %w", err)
	}
	return seeds, nil
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchTone, "tone", "", "writing tone applied to every item")
	batchCmd.Flags().StringVar(&batchAudience, "audience", "", "target audience applied to every item")
	batchCmd.Flags().StringVar(&batchImageSource, "image-source", "", "image source: none, pexels or upload")
	batchCmd.Flags().StringVar(&batchDelay, "delay", "", "delay between items, e.g. 5s (default from config)")
}
