package external

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	alquranBaseURL = "https://api.alquran.cloud"
	quranTimeout   = 15 * time.Second

	// TotalAyahs in the Quran — day-seeded ayah selection cycles through
	// all of them.
	TotalAyahs = 6236

	arabicEdition      = "quran-uthmani"
	translationEdition = "en.asad"
)

// Ayah is a single verse with Arabic text and English translation.
type Ayah struct {
	SurahNumber       int    `json:"surah_number"`
	SurahEnglishName  string `json:"surah_english_name"`
	SurahArabicName   string `json:"surah_arabic_name"`
	AyahNumberInSurah int    `json:"ayah_number_in_surah"`
	Arabic            string `json:"arabic"`
	Translation       string `json:"translation"`
}

// QuranService fetches verse text from Al-Quran Cloud.
type QuranService struct {
	baseURL    string
	httpClient *http.Client
}

// NewQuranService creates a Quran text client. baseURL is overridable for tests.
func NewQuranService(baseURL string) *QuranService {
	if baseURL == "" {
		baseURL = alquranBaseURL
	}
	return &QuranService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: quranTimeout},
	}
}

type ayahEditionsResponse struct {
	Data []struct {
		Edition struct {
			Identifier string `json:"identifier"`
		} `json:"edition"`
		NumberInSurah int    `json:"numberInSurah"`
		Text          string `json:"text"`
		Surah         struct {
			Number      int    `json:"number"`
			EnglishName string `json:"englishName"`
			Name        string `json:"name"`
		} `json:"surah"`
	} `json:"data"`
}

// SurahInfo is one chapter in the surah index.
type SurahInfo struct {
	Number         int    `json:"number"`
	EnglishName    string `json:"english_name"`
	ArabicName     string `json:"arabic_name"`
	RevelationType string `json:"revelation_type"`
	NumberOfAyahs  int    `json:"number_of_ayahs"`
}

// SurahAyah is one verse of a surah with Arabic text and translation.
type SurahAyah struct {
	Number      int    `json:"number"`
	Text        string `json:"text"`
	Translation string `json:"translation"`
}

// SurahDetail is a full chapter in the Arabic edition plus one translation.
type SurahDetail struct {
	Number      int         `json:"number"`
	EnglishName string      `json:"english_name"`
	ArabicName  string      `json:"arabic_name"`
	Ayahs       []SurahAyah `json:"ayahs"`
}

type surahListResponse struct {
	Data []struct {
		Number         int    `json:"number"`
		EnglishName    string `json:"englishName"`
		Name           string `json:"name"`
		RevelationType string `json:"revelationType"`
		NumberOfAyahs  int    `json:"numberOfAyahs"`
	} `json:"data"`
}

type surahEditionResponse struct {
	Data struct {
		Number      int    `json:"number"`
		EnglishName string `json:"englishName"`
		Name        string `json:"name"`
		Ayahs       []struct {
			NumberInSurah int    `json:"numberInSurah"`
			Text          string `json:"text"`
		} `json:"ayahs"`
	} `json:"data"`
}

// Surahs fetches the index of all 114 chapters.
func (s *QuranService) Surahs(ctx context.Context) ([]SurahInfo, error) {
	var payload surahListResponse
	if err := s.get(ctx, s.baseURL+"/v1/surah", &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("quran: empty surah list")
	}

	surahs := make([]SurahInfo, 0, len(payload.Data))
	for _, entry := range payload.Data {
		surahs = append(surahs, SurahInfo{
			Number:         entry.Number,
			EnglishName:    entry.EnglishName,
			ArabicName:     entry.Name,
			RevelationType: entry.RevelationType,
			NumberOfAyahs:  entry.NumberOfAyahs,
		})
	}
	return surahs, nil
}

// Surah fetches one chapter in the Arabic edition and the given translation
// edition, merged ayah-by-ayah.
func (s *QuranService) Surah(ctx context.Context, number int, translation string) (*SurahDetail, error) {
	if number < 1 || number > 114 {
		return nil, fmt.Errorf("surah number out of range: %d", number)
	}
	if translation == "" {
		translation = translationEdition
	}

	var arabic, translated surahEditionResponse
	if err := s.get(ctx, fmt.Sprintf("%s/v1/surah/%d/%s", s.baseURL, number, arabicEdition), &arabic); err != nil {
		return nil, err
	}
	if err := s.get(ctx, fmt.Sprintf("%s/v1/surah/%d/%s", s.baseURL, number, translation), &translated); err != nil {
		return nil, err
	}
	if len(arabic.Data.Ayahs) == 0 {
		return nil, fmt.Errorf("quran: empty surah %d", number)
	}

	ayahs := make([]SurahAyah, 0, len(arabic.Data.Ayahs))
	for i, ayah := range arabic.Data.Ayahs {
		translationText := ""
		if i < len(translated.Data.Ayahs) {
			translationText = translated.Data.Ayahs[i].Text
		}
		ayahs = append(ayahs, SurahAyah{
			Number:      ayah.NumberInSurah,
			Text:        ayah.Text,
			Translation: translationText,
		})
	}

	return &SurahDetail{
		Number:      arabic.Data.Number,
		EnglishName: arabic.Data.EnglishName,
		ArabicName:  arabic.Data.Name,
		Ayahs:       ayahs,
	}, nil
}

// AyahByNumber fetches one ayah (1-based global number) in the Arabic and
// English editions.
func (s *QuranService) AyahByNumber(ctx context.Context, number int) (*Ayah, error) {
	if number < 1 || number > TotalAyahs {
		return nil, fmt.Errorf("ayah number out of range: %d", number)
	}

	u := fmt.Sprintf("%s/v1/ayah/%d/editions/%s,%s",
		s.baseURL, number, arabicEdition, translationEdition)

	var payload ayahEditionsResponse
	if err := s.get(ctx, u, &payload); err != nil {
		return nil, err
	}
	if len(payload.Data) == 0 {
		return nil, fmt.Errorf("quran: empty response")
	}

	arabic := payload.Data[0]
	translation := payload.Data[len(payload.Data)-1]
	for _, entry := range payload.Data {
		switch entry.Edition.Identifier {
		case arabicEdition:
			arabic = entry
		case translationEdition:
			translation = entry
		}
	}

	return &Ayah{
		SurahNumber:       arabic.Surah.Number,
		SurahEnglishName:  arabic.Surah.EnglishName,
		SurahArabicName:   arabic.Surah.Name,
		AyahNumberInSurah: arabic.NumberInSurah,
		Arabic:            arabic.Text,
		Translation:       translation.Text,
	}, nil
}

func (s *QuranService) get(ctx context.Context, u string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("quran request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("quran: status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode quran response: %w", err)
	}
	return nil
}
