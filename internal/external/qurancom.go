package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	quranComBaseURL = "https://api.quran.com"
	quranComTimeout = 15 * time.Second
	audioCDNBaseURL = "https://audio.qurancdn.com"

	// wordTranslationID is Quran.com's word-by-word English translation
	// resource.
	wordTranslationID = "131"
)

// Word is one word of a verse with its reading aids.
type Word struct {
	ID              int64  `json:"id"`
	Position        int    `json:"position"`
	Text            string `json:"text"`
	Translation     string `json:"translation"`
	Transliteration string `json:"transliteration"`
	AudioURL        string `json:"audioUrl"`
	CharType        string `json:"charType"`
}

// JuzVerse is one verse of a juz page with word-by-word breakdown.
type JuzVerse struct {
	ID       int64  `json:"id"`
	VerseKey string `json:"verseKey"`
	Text     string `json:"text"`
	Words    []Word `json:"words"`
}

// JuzPage is one page of verses from a juz.
type JuzPage struct {
	Verses       []JuzVerse `json:"verses"`
	Page         int        `json:"page"`
	HasMore      bool       `json:"hasMore"`
	TotalPages   int        `json:"totalPages"`
	TotalRecords int        `json:"totalRecords"`
}

// QuranComService fetches word-by-word verse data from Quran.com.
type QuranComService struct {
	baseURL    string
	httpClient *http.Client
}

// NewQuranComService creates a Quran.com client. baseURL is overridable for tests.
func NewQuranComService(baseURL string) *QuranComService {
	if baseURL == "" {
		baseURL = quranComBaseURL
	}
	return &QuranComService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: quranComTimeout},
	}
}

type quranComVersesResponse struct {
	Verses []struct {
		ID          int64  `json:"id"`
		VerseKey    string `json:"verse_key"`
		TextUthmani string `json:"text_uthmani"`
		Words       []struct {
			ID              int64  `json:"id"`
			Position        int    `json:"position"`
			TextUthmani     string `json:"text_uthmani"`
			Text            string `json:"text"`
			Transliteration *struct {
				Text string `json:"text"`
			} `json:"transliteration"`
			Translation *struct {
				Text string `json:"text"`
			} `json:"translation"`
			AudioURL string `json:"audio_url"`
			CharType string `json:"char_type_name"`
		} `json:"words"`
	} `json:"verses"`
	Pagination *struct {
		CurrentPage  int  `json:"current_page"`
		NextPage     *int `json:"next_page"`
		TotalPages   int  `json:"total_pages"`
		TotalRecords int  `json:"total_records"`
	} `json:"pagination"`
}

// VersesByJuz fetches one page of a juz with word-by-word reading aids.
func (s *QuranComService) VersesByJuz(ctx context.Context, juz, page, perPage int) (*JuzPage, error) {
	params := url.Values{}
	params.Set("words", "true")
	params.Set("page", strconv.Itoa(page))
	params.Set("per_page", strconv.Itoa(perPage))
	params.Set("word_fields", "text_uthmani,translation,transliteration,audio_url,char_type_name")
	params.Set("fields", "text_uthmani,verse_key")
	params.Set("translations", wordTranslationID)

	u := fmt.Sprintf("%s/api/v4/verses/by_juz/%d?%s", s.baseURL, juz, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quran.com request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("quran.com: status %d", resp.StatusCode)
	}

	var payload quranComVersesResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quran.com response: %w", err)
	}

	verses := make([]JuzVerse, 0, len(payload.Verses))
	for _, v := range payload.Verses {
		words := make([]Word, 0, len(v.Words))
		for _, w := range v.Words {
			text := w.TextUthmani
			if text == "" {
				text = w.Text
			}
			word := Word{
				ID:       w.ID,
				Position: w.Position,
				Text:     text,
				AudioURL: normalizeAudioURL(w.AudioURL),
				CharType: w.CharType,
			}
			if w.Translation != nil {
				word.Translation = w.Translation.Text
			}
			if w.Transliteration != nil {
				word.Transliteration = w.Transliteration.Text
			}
			words = append(words, word)
		}
		verses = append(verses, JuzVerse{
			ID:       v.ID,
			VerseKey: verseKeyOrFallback(v.VerseKey, v.ID),
			Text:     v.TextUthmani,
			Words:    words,
		})
	}

	out := &JuzPage{
		Verses:       verses,
		Page:         page,
		TotalPages:   page,
		TotalRecords: len(verses),
	}
	if p := payload.Pagination; p != nil {
		out.HasMore = p.NextPage != nil
		out.TotalPages = p.TotalPages
		out.TotalRecords = p.TotalRecords
	}
	return out, nil
}

// normalizeAudioURL resolves relative CDN paths to absolute URLs.
func normalizeAudioURL(raw string) string {
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		return raw
	}
	return audioCDNBaseURL + "/" + strings.TrimLeft(raw, "/")
}

func verseKeyOrFallback(key string, id int64) string {
	key = strings.TrimSpace(key)
	if key != "" {
		return key
	}
	return fmt.Sprintf("verse-%d", id)
}
