package content

import (
	"testing"
	"time"
)

func TestDaySeedStableWithinDay(t *testing.T) {
	morning := time.Date(2026, 3, 2, 0, 0, 1, 0, time.UTC)
	evening := time.Date(2026, 3, 2, 23, 59, 59, 0, time.UTC)

	if DaySeed(morning) != DaySeed(evening) {
		t.Fatal("seed must be stable across one UTC day")
	}
	if DaySeed(evening)+1 != DaySeed(evening.Add(time.Second)) {
		t.Fatal("seed must advance at the UTC day boundary")
	}
}

func TestHadithOfDayDeterministic(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := HadithOfDay(day)
	second := HadithOfDay(day.Add(8 * time.Hour))
	if first.ID != second.ID {
		t.Fatalf("same day must yield same hadith: %s vs %s", first.ID, second.ID)
	}
	if first.Text == "" || first.Reference == "" {
		t.Fatal("curated hadith must carry text and reference")
	}

	next := HadithOfDay(day.AddDate(0, 0, 1))
	if next.ID == first.ID {
		t.Fatal("consecutive days must rotate the pick")
	}
}

func TestDuaOfDayDeterministic(t *testing.T) {
	day := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	first := DuaOfDay(day)
	if first != DuaOfDay(day.Add(10*time.Hour)) {
		t.Fatal("same day must yield same dua")
	}
	if first.Arabic == "" || first.Translation == "" {
		t.Fatal("curated dua must carry arabic and translation")
	}
}

func TestFilterHadith(t *testing.T) {
	all, err := FilterHadith("", "")
	if err != nil {
		t.Fatalf("unfiltered: %v", err)
	}
	if len(all) != 6 {
		t.Fatalf("expected all 6 hadith, got %d", len(all))
	}

	bukhari, err := FilterHadith("bukhari", "")
	if err != nil {
		t.Fatalf("collection filter: %v", err)
	}
	if len(bukhari) != 2 {
		t.Fatalf("expected 2 bukhari hadith, got %d", len(bukhari))
	}
	for _, h := range bukhari {
		if h.Collection != "bukhari" {
			t.Fatalf("wrong collection in %+v", h)
		}
	}

	prayer, err := FilterHadith("", "prayer")
	if err != nil {
		t.Fatalf("category filter: %v", err)
	}
	if len(prayer) != 2 {
		t.Fatalf("expected 2 prayer hadith, got %d", len(prayer))
	}

	both, err := FilterHadith("muslim", "prayer")
	if err != nil {
		t.Fatalf("combined filter: %v", err)
	}
	if len(both) != 1 || both[0].ID != "muslim-113" {
		t.Fatalf("expected muslim-113, got %v", both)
	}

	none, err := FilterHadith("bukhari", "knowledge")
	if err != nil {
		t.Fatalf("empty result filter: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no rows, got %v", none)
	}
}

func TestFilterHadithRejectsUnknownSelectors(t *testing.T) {
	if _, err := FilterHadith("abu-dawud", ""); err == nil {
		t.Fatal("unknown collection must error")
	}
	if _, err := FilterHadith("", "patience"); err == nil {
		t.Fatal("unknown category must error")
	}
}

func TestParas(t *testing.T) {
	paras := Paras()
	if len(paras) != ParaCount {
		t.Fatalf("expected %d paras, got %d", ParaCount, len(paras))
	}

	first := paras[0]
	if first.ID != 1 || first.Name != "Alif Lam Meem" {
		t.Fatalf("unexpected first para %+v", first)
	}
	if first.StartSurah != 2 || first.StartAyah != 1 || first.StartSurahName != "Al-Baqarah" {
		t.Fatalf("unexpected first para start %+v", first)
	}

	last := paras[ParaCount-1]
	if last.Name != "Amma" || last.StartSurah != 78 || last.StartSurahName != "An-Naba" {
		t.Fatalf("unexpected last para %+v", last)
	}

	// Para ayah totals must partition the whole Quran.
	total := 0
	for _, p := range paras {
		if p.TotalAyahs <= 0 {
			t.Fatalf("para %d has non-positive ayah total", p.ID)
		}
		total += p.TotalAyahs
	}
	// Para 1 starts at 2:1, so Al-Fatihah's 7 ayahs precede the division.
	if total != 6236-7 {
		t.Fatalf("para totals sum to %d, want %d", total, 6236-7)
	}
}

func TestValidPara(t *testing.T) {
	for _, id := range []int{1, 15, 30} {
		if !ValidPara(id) {
			t.Errorf("para %d should be valid", id)
		}
	}
	for _, id := range []int{0, -1, 31} {
		if ValidPara(id) {
			t.Errorf("para %d should be invalid", id)
		}
	}
}

func TestAyahNumberOfDayRange(t *testing.T) {
	const totalAyahs = 6236

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 400; i++ {
		n := AyahNumberOfDay(start.AddDate(0, 0, i), totalAyahs)
		if n < 1 || n > totalAyahs {
			t.Fatalf("day %d: ayah number %d out of range", i, n)
		}
	}

	a := AyahNumberOfDay(start, totalAyahs)
	b := AyahNumberOfDay(start.AddDate(0, 0, 1), totalAyahs)
	if b != a+1 && !(a == totalAyahs && b == 1) {
		t.Fatalf("consecutive days must advance the cycle: %d then %d", a, b)
	}
}
