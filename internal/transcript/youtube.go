package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ytlearn/internal/domain"
)

// YouTube acquires caption tracks straight from the watch page: the page
// embeds player metadata listing the available tracks, each with a
// timedtext URL the track can be downloaded from.
type YouTube struct {
	client    *http.Client
	languages []string
}

// Config configures the YouTube transcript source.
type Config struct {
	Languages []string
	Timeout   time.Duration
}

// NewYouTube creates a transcript source for the given caption languages.
func NewYouTube(cfg Config) *YouTube {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &YouTube{
		client:    &http.Client{Timeout: timeout},
		languages: langs,
	}
}

// VideoID derives the session identifier from a locator.
func (y *YouTube) VideoID(ref string) (string, error) {
	return ParseVideoID(ref)
}

// Fetch downloads the caption track for videoID and flattens it to plain
// text. Manually-authored tracks are preferred over auto-generated ones.
func (y *YouTube) Fetch(ctx context.Context, videoID string) (string, error) {
	page, err := y.get(ctx, "https://www.youtube.com/watch?v="+videoID)
	if err != nil {
		return "", fmt.Errorf("%w: watch page: %v", domain.ErrTranscriptUnavailable, err)
	}
	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrTranscriptUnavailable, err)
	}
	track, ok := chooseTrack(tracks, y.languages)
	if !ok {
		return "", fmt.Errorf("%w: no caption track for languages %v", domain.ErrTranscriptUnavailable, y.languages)
	}
	vtt, err := y.get(ctx, track.BaseURL+"&fmt=vtt")
	if err != nil {
		return "", fmt.Errorf("%w: caption track: %v", domain.ErrTranscriptUnavailable, err)
	}
	text := flattenVTT(vtt)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: caption track is empty", domain.ErrTranscriptUnavailable)
	}
	return text, nil
}

func (y *YouTube) get(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	resp, err := y.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" for auto-generated
}

const captionTracksMarker = `"captionTracks":`

// parseCaptionTracks extracts the caption-track list from the watch page's
// embedded player response.
func parseCaptionTracks(page string) ([]captionTrack, error) {
	start := strings.Index(page, captionTracksMarker)
	if start < 0 {
		return nil, fmt.Errorf("no caption tracks on watch page")
	}
	raw := page[start+len(captionTracksMarker):]
	end := matchBracket(raw)
	if end < 0 {
		return nil, fmt.Errorf("malformed caption track list")
	}
	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw[:end+1]), &tracks); err != nil {
		return nil, fmt.Errorf("decode caption track list: %v", err)
	}
	if len(tracks) == 0 {
		return nil, fmt.Errorf("empty caption track list")
	}
	return tracks, nil
}

// matchBracket returns the offset of the ] closing the array that starts at
// s[0], accounting for nesting and string literals.
func matchBracket(s string) int {
	if len(s) == 0 || s[0] != '[' {
		return -1
	}
	depth := 0
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// chooseTrack picks the first track matching a configured language,
// preferring manually-authored tracks over auto-generated ones.
func chooseTrack(tracks []captionTrack, languages []string) (captionTrack, bool) {
	for _, lang := range languages {
		var fallback *captionTrack
		for i := range tracks {
			t := tracks[i]
			if t.LanguageCode != lang && !strings.HasPrefix(t.LanguageCode, lang+"-") {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if fallback == nil {
				fallback = &tracks[i]
			}
		}
		if fallback != nil {
			return *fallback, true
		}
	}
	return captionTrack{}, false
}
