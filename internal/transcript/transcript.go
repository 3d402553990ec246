// Package transcript turns a YouTube URL into a text seed for content
// generation. It tries caption tracks first, then video metadata, then the
// watch-page title, degrading gracefully at each step.
package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/config"
	"github.com/animanial5v2-cloud/youtube-auto-blogger/internal/logger"
)

// Source identifies which extraction stage produced the seed.
type Source string

const (
	SourceCaptions Source = "captions"
	SourceMetadata Source = "metadata"
	SourceTitle    Source = "title"
)

// Result is the extracted seed plus provenance for logging and metadata.
type Result struct {
	VideoID  string
	Seed     string
	Source   Source
	Language string
}

// ErrNoSeed is returned when every extraction stage came up empty.
var ErrNoSeed = errors.New("could not extract any text for the video")

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:v=|/embed/|/shorts/|youtu\.be/)([A-Za-z0-9_-]{11})`),
}

// ExtractVideoID pulls the 11-character video ID out of the common YouTube
// URL shapes (watch, youtu.be, embed, shorts).
func ExtractVideoID(raw string) (string, bool) {
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// IsYouTubeURL reports whether the given seed looks like a YouTube link.
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	return host == "youtube.com" || host == "m.youtube.com" || host == "youtu.be"
}

// Extractor fetches transcripts and metadata. Base URLs are fields so tests
// can point them at a local server.
type Extractor struct {
	httpClient *http.Client
	apiKey     string
	languages  []string

	timedtextBase string
	dataAPIBase   string
	watchBase     string
}

// New builds an Extractor from configuration. The Data API key is optional;
// without it the metadata stage is skipped.
func New(cfg config.YouTube) *Extractor {
	languages := cfg.Languages
	if len(languages) == 0 {
		languages = []string{"ko", "ko-KR", "en", "en-US", "ja"}
	}
	return &Extractor{
		httpClient:    &http.Client{Timeout: config.Duration(cfg.Timeout, 15*time.Second)},
		apiKey:        cfg.APIKey,
		languages:     languages,
		timedtextBase: "https://www.youtube.com",
		dataAPIBase:   "https://www.googleapis.com",
		watchBase:     "https://www.youtube.com",
	}
}

// Extract resolves a YouTube URL into a generation seed. Stages run in
// order (captions, Data API metadata, watch-page title) and the first one
// that yields text wins.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (Result, error) {
	videoID, ok := ExtractVideoID(rawURL)
	if !ok {
		return Result{}, fmt.Errorf("unrecognized YouTube URL: %s", rawURL)
	}

	if text, lang, err := e.fetchCaptions(ctx, videoID); err == nil && text != "" {
		logger.Info("transcript extracted from captions", "video_id", videoID, "lang", lang, "chars", len(text))
		return Result{VideoID: videoID, Seed: text, Source: SourceCaptions, Language: lang}, nil
	} else if err != nil {
		logger.Warn("caption extraction failed", "video_id", videoID, "error", err.Error())
	}

	if e.apiKey != "" {
		if text, err := e.fetchMetadata(ctx, videoID); err == nil && text != "" {
			logger.Info("transcript fell back to video metadata", "video_id", videoID)
			return Result{VideoID: videoID, Seed: text, Source: SourceMetadata}, nil
		} else if err != nil {
			logger.Warn("metadata lookup failed", "video_id", videoID, "error", err.Error())
		}
	}

	if title, err := e.fetchPageTitle(ctx, videoID); err == nil && title != "" {
		logger.Info("transcript fell back to page title", "video_id", videoID, "title", title)
		return Result{VideoID: videoID, Seed: title, Source: SourceTitle}, nil
	} else if err != nil {
		logger.Warn("page title scrape failed", "video_id", videoID, "error", err.Error())
	}

	return Result{VideoID: videoID}, fmt.Errorf("video %s: %w", videoID, ErrNoSeed)
}

type trackList struct {
	Tracks []struct {
		LangCode string `xml:"lang_code,attr"`
		Kind     string `xml:"kind,attr"`
	} `xml:"track"`
}

type timedText struct {
	Texts []struct {
		Value string `xml:",chardata"`
	} `xml:"text"`
}

// fetchCaptions tries the track listing first and downloads the best
// language match. When the listing fails or is empty, it falls back to
// fetching each configured language directly; some videos serve tracks the
// listing endpoint does not advertise.
func (e *Extractor) fetchCaptions(ctx context.Context, videoID string) (string, string, error) {
	lang, listErr := e.listTrackLanguage(ctx, videoID)
	if listErr == nil && lang != "" {
		text, err := e.fetchTrack(ctx, videoID, lang)
		if err == nil && text != "" {
			return text, lang, nil
		}
		if err != nil {
			logger.Warn("listed caption track fetch failed", "video_id", videoID, "lang", lang, "error", err.Error())
		}
	}

	for _, lang := range e.languages {
		text, err := e.fetchTrack(ctx, videoID, lang)
		if err != nil || text == "" {
			continue
		}
		return text, lang, nil
	}

	if listErr != nil {
		return "", "", fmt.Errorf("list caption tracks: %w", listErr)
	}
	return "", "", nil
}

// listTrackLanguage fetches the track listing and picks the best language.
// "" with a nil error means the video advertises no tracks.
func (e *Extractor) listTrackLanguage(ctx context.Context, videoID string) (string, error) {
	listURL := fmt.Sprintf("%s/api/timedtext?type=list&v=%s", e.timedtextBase, url.QueryEscape(videoID))
	body, err := e.get(ctx, listURL)
	if err != nil {
		return "", err
	}

	var list trackList
	if err := xml.Unmarshal(body, &list); err != nil {
		return "", fmt.Errorf("parse track list: %w", err)
	}
	if len(list.Tracks) == 0 {
		return "", nil
	}
	return e.pickLanguage(&list), nil
}

// fetchTrack downloads one caption track and joins its lines.
func (e *Extractor) fetchTrack(ctx context.Context, videoID, lang string) (string, error) {
	trackURL := fmt.Sprintf("%s/api/timedtext?lang=%s&v=%s", e.timedtextBase, url.QueryEscape(lang), url.QueryEscape(videoID))
	body, err := e.get(ctx, trackURL)
	if err != nil {
		return "", err
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse caption track: %w", err)
	}

	parts := make([]string, 0, len(tt.Texts))
	for _, t := range tt.Texts {
		line := strings.TrimSpace(html.UnescapeString(t.Value))
		if line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " "), nil
}

// pickLanguage returns the first configured language with an available
// track, preferring manual tracks over ASR when both exist. Falls back to
// the first listed track.
func (e *Extractor) pickLanguage(list *trackList) string {
	for _, want := range e.languages {
		for _, track := range list.Tracks {
			if track.LangCode == want && track.Kind != "asr" {
				return want
			}
		}
	}
	for _, want := range e.languages {
		for _, track := range list.Tracks {
			if track.LangCode == want {
				return want
			}
		}
	}
	return list.Tracks[0].LangCode
}

// fetchMetadata reads the video title and description from the Data API.
func (e *Extractor) fetchMetadata(ctx context.Context, videoID string) (string, error) {
	apiURL := fmt.Sprintf("%s/youtube/v3/videos?part=snippet&id=%s&key=%s",
		e.dataAPIBase, url.QueryEscape(videoID), url.QueryEscape(e.apiKey))
	body, err := e.get(ctx, apiURL)
	if err != nil {
		return "", err
	}

	var out struct {
		Items []struct {
			Snippet struct {
				Title       string `json:"title"`
				Description string `json:"description"`
			} `json:"snippet"`
		} `json:"items"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode videos.list response: %w", err)
	}
	if len(out.Items) == 0 {
		return "", nil
	}

	snippet := out.Items[0].Snippet
	if snippet.Description == "" {
		return snippet.Title, nil
	}
	return snippet.Title + "\n\n" + snippet.Description, nil
}

// fetchPageTitle scrapes the watch page title, dropping the trailing
// " - YouTube" suffix.
func (e *Extractor) fetchPageTitle(ctx context.Context, videoID string) (string, error) {
	pageURL := fmt.Sprintf("%s/watch?v=%s", e.watchBase, url.QueryEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; autoblogger/1.0)")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse watch page: %w", err)
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	title = strings.TrimSuffix(title, " - YouTube")
	return strings.TrimSpace(title), nil
}

func (e *Extractor) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 8<<20))
}
