package content

import "fmt"

// Para metadata for the 30-part reading division of the Quran. Start points
// are fixed by convention; per-para ayah totals are derived from the chapter
// ayah counts at init.

// Para describes one juz: its traditional name and where it begins.
type Para struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	StartSurah     int    `json:"startSurah"`
	StartAyah      int    `json:"startAyah"`
	StartSurahName string `json:"startSurahName"`
	TotalAyahs     int    `json:"totalAyahs"`
}

// chapterAyahCounts holds the ayah count of each of the 114 surahs in order.
var chapterAyahCounts = []int{
	7, 286, 200, 176, 120, 165, 206, 75, 129, 109, 123, 111, 43, 52, 99, 128,
	111, 110, 98, 135, 112, 78, 118, 64, 77, 227, 93, 88, 69, 60, 34, 30, 73,
	54, 45, 83, 182, 88, 75, 85, 54, 53, 89, 59, 37, 35, 38, 29, 18, 45, 60,
	49, 62, 55, 78, 96, 29, 22, 24, 13, 14, 11, 11, 18, 12, 12, 30, 52, 52,
	44, 28, 28, 20, 56, 40, 31, 50, 40, 46, 42, 29, 19, 36, 25, 22, 17, 19,
	26, 30, 20, 15, 21, 11, 8, 8, 19, 5, 8, 8, 11, 11, 8, 3, 9, 5, 4, 7, 3,
	6, 3, 5, 4, 5, 6,
}

var paraNames = []string{
	"Alif Lam Meem", "Sayaqool", "Tilka al-Rusul", "Lan Tana Loo",
	"Wal Mohsanat", "La Yuhibbullah", "Wa Iza Samiu", "Wa Lau Annana",
	"Qala al-Mala", "Wa A'lamu", "Yatazeroon", "Wa Mamin Da'abat",
	"Wa Ma Ubarriu", "Rubama", "Subhan Alladhi", "Qala Alam", "Aqtaraba",
	"Qadd Aflaha", "Wa Qala Alladhina", "A'man Khalaq", "Utlu Ma Oohi",
	"Wa Manyaqnut", "Wa Mali", "Faman Azlam", "Ilayhi Yurad", "Ha Meem",
	"Qala Fama Khatbukum", "Qad Sami Allah", "Tabarak Alladhi", "Amma",
}

var paraStarts = []struct{ surah, ayah int }{
	{2, 1}, {2, 142}, {2, 253}, {3, 93}, {4, 24}, {4, 148}, {5, 82},
	{6, 111}, {7, 88}, {8, 41}, {9, 93}, {11, 6}, {12, 53}, {15, 1},
	{17, 1}, {18, 75}, {21, 1}, {23, 1}, {25, 21}, {27, 56}, {29, 46},
	{33, 31}, {36, 28}, {39, 32}, {41, 47}, {46, 1}, {51, 31}, {58, 1},
	{67, 1}, {78, 1},
}

var startSurahNames = map[int]string{
	2: "Al-Baqarah", 3: "Ali 'Imran", 4: "An-Nisa", 5: "Al-Ma'idah",
	6: "Al-An'am", 7: "Al-A'raf", 8: "Al-Anfal", 9: "At-Tawbah",
	11: "Hud", 12: "Yusuf", 15: "Al-Hijr", 17: "Al-Isra", 18: "Al-Kahf",
	21: "Al-Anbiya", 23: "Al-Mu'minun", 25: "Al-Furqan", 27: "An-Naml",
	29: "Al-'Ankabut", 33: "Al-Ahzab", 36: "Ya-Sin", 39: "Az-Zumar",
	41: "Fussilat", 46: "Al-Ahqaf", 51: "Adh-Dhariyat", 58: "Al-Mujadila",
	67: "Al-Mulk", 78: "An-Naba",
}

// ParaCount is the number of juz divisions.
const ParaCount = 30

var paraMeta = buildParaMeta()

// Paras returns the metadata for all 30 paras in order.
func Paras() []Para {
	return paraMeta
}

// ValidPara reports whether id is a known para number.
func ValidPara(id int) bool {
	return id >= 1 && id <= ParaCount
}

func buildParaMeta() []Para {
	out := make([]Para, len(paraStarts))
	for i, start := range paraStarts {
		name := startSurahNames[start.surah]
		if name == "" {
			name = fmt.Sprintf("Surah %d", start.surah)
		}
		out[i] = Para{
			ID:             i + 1,
			Name:           paraNames[i],
			StartSurah:     start.surah,
			StartAyah:      start.ayah,
			StartSurahName: name,
			TotalAyahs:     paraTotalAyahs(i),
		}
	}
	return out
}

// paraTotalAyahs counts the ayahs between para i's start and the next para's
// start (or the end of the Quran for the last para).
func paraTotalAyahs(i int) int {
	start := verseAbsoluteIndex(paraStarts[i].surah, paraStarts[i].ayah)
	if i == len(paraStarts)-1 {
		total := 0
		for _, n := range chapterAyahCounts {
			total += n
		}
		return total - start + 1
	}
	next := verseAbsoluteIndex(paraStarts[i+1].surah, paraStarts[i+1].ayah)
	return next - start
}

// verseAbsoluteIndex is the 1-based position of an ayah in the whole Quran.
func verseAbsoluteIndex(surah, ayah int) int {
	index := 0
	for s := 1; s < surah; s++ {
		index += chapterAyahCounts[s-1]
	}
	return index + ayah
}
