// Package content holds curated devotional content (hadith, duas, juz
// metadata) with day-seeded selection so every caller sees the same pick for
// a given day.
package content

import (
	"fmt"
	"time"
)

// Hadith is one curated narration.
type Hadith struct {
	ID         string `json:"id"`
	Collection string `json:"collection"` // bukhari | muslim | tirmidhi
	Category   string `json:"category"`   // faith | character | prayer | knowledge
	Text       string `json:"text"`
	Narrator   string `json:"narrator"`
	Reference  string `json:"reference"`
}

// Dua is one supplication with translation.
type Dua struct {
	Title       string `json:"title"`
	Arabic      string `json:"arabic"`
	Translation string `json:"translation"`
}

var hadithData = []Hadith{
	{
		ID:         "bukhari-1",
		Collection: "bukhari",
		Category:   "faith",
		Text:       "Actions are judged by intentions, and each person will receive according to what they intended.",
		Narrator:   "Umar ibn Al-Khattab (RA)",
		Reference:  "Sahih al-Bukhari 1",
	},
	{
		ID:         "bukhari-8",
		Collection: "bukhari",
		Category:   "prayer",
		Text:       "The most beloved deeds to Allah are those done regularly, even if they are small.",
		Narrator:   "Aisha (RA)",
		Reference:  "Sahih al-Bukhari 6464",
	},
	{
		ID:         "muslim-55",
		Collection: "muslim",
		Category:   "character",
		Text:       "None of you truly believes until he loves for his brother what he loves for himself.",
		Narrator:   "Anas ibn Malik (RA)",
		Reference:  "Sahih Muslim 45",
	},
	{
		ID:         "muslim-113",
		Collection: "muslim",
		Category:   "prayer",
		Text:       "The five daily prayers erase sins committed between them, as long as major sins are avoided.",
		Narrator:   "Abu Hurairah (RA)",
		Reference:  "Sahih Muslim 233",
	},
	{
		ID:         "tirmidhi-245",
		Collection: "tirmidhi",
		Category:   "knowledge",
		Text:       "Whoever treads a path seeking knowledge, Allah will make easy for him a path to Paradise.",
		Narrator:   "Abu Hurairah (RA)",
		Reference:  "Jami at-Tirmidhi 2646",
	},
	{
		ID:         "tirmidhi-421",
		Collection: "tirmidhi",
		Category:   "character",
		Text:       "The believer who mixes with people and is patient with their harm has greater reward.",
		Narrator:   "Ibn Umar (RA)",
		Reference:  "Jami at-Tirmidhi 2507",
	},
}

var duaData = []Dua{
	{
		Title:       "Morning Protection",
		Arabic:      "اللَّهُمَّ بِكَ أَصْبَحْنَا وَبِكَ أَمْسَيْنَا",
		Translation: "O Allah, by You we enter the morning and by You we enter the evening.",
	},
	{
		Title:       "Forgiveness",
		Arabic:      "أَسْتَغْفِرُ اللَّهَ الَّذِي لَا إِلَٰهَ إِلَّا هُوَ الْحَيُّ الْقَيُّومُ",
		Translation: "I seek forgiveness from Allah, none has the right to be worshipped except Him, the Ever-Living.",
	},
	{
		Title:       "Gratitude",
		Arabic:      "الْحَمْدُ لِلَّهِ رَبِّ الْعَالَمِينَ",
		Translation: "All praise is for Allah, Lord of all worlds.",
	},
}

var (
	hadithCollections = map[string]bool{"bukhari": true, "muslim": true, "tirmidhi": true}
	hadithCategories  = map[string]bool{"faith": true, "character": true, "prayer": true, "knowledge": true}
)

// FilterHadith returns the curated hadith matching the given collection and
// category. Empty selectors match everything; unknown selectors are an error.
func FilterHadith(collection, category string) ([]Hadith, error) {
	if collection != "" && !hadithCollections[collection] {
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
	if category != "" && !hadithCategories[category] {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	out := make([]Hadith, 0, len(hadithData))
	for _, h := range hadithData {
		if collection != "" && h.Collection != collection {
			continue
		}
		if category != "" && h.Category != category {
			continue
		}
		out = append(out, h)
	}
	return out, nil
}

// DaySeed returns a stable integer for the UTC day containing t.
func DaySeed(t time.Time) int {
	return int(t.Unix() / 86_400)
}

// HadithOfDay returns the deterministic hadith pick for the day of t.
func HadithOfDay(t time.Time) Hadith {
	return hadithData[DaySeed(t)%len(hadithData)]
}

// DuaOfDay returns the deterministic dua pick for the day of t.
func DuaOfDay(t time.Time) Dua {
	return duaData[DaySeed(t)%len(duaData)]
}

// AyahNumberOfDay returns the 1-based global ayah number for the day of t,
// cycling through all totalAyahs verses.
func AyahNumberOfDay(t time.Time, totalAyahs int) int {
	return (DaySeed(t) % totalAyahs) + 1
}
