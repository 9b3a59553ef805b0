package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/deenxzikr/deen-api/internal/api/respond"
	"github.com/deenxzikr/deen-api/internal/cache"
	"github.com/deenxzikr/deen-api/internal/content"
)

// Translation/edition identifiers are lowercase dotted slugs ("en.asad").
var editionPattern = regexp.MustCompile(`^[a-z]{2}\.[a-z-]{1,40}$`)

// GetQuranSurahs returns the index of all 114 surahs.
// @Summary Surah index
// @Description Returns the list of all surahs with names, revelation type, and ayah counts.
// @Tags quran
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 502 {object} respond.ErrorResponse
// @Router /quran [get]
func (h *Handler) GetQuranSurahs(w http.ResponseWriter, r *http.Request) {
	const cacheKey = "quran:surahs"
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLQuranText, true)
		return
	}

	surahs, err := h.quran.Surahs(r.Context())
	if err != nil {
		h.logger.Warn("surah list fetch failed", "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Quran list unavailable")
		return
	}

	data, err := json.Marshal(map[string]interface{}{"surahs": surahs})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLQuranText)
	respond.WriteJSON(w, data, etag, cache.TTLQuranText, false)
}

// GetSurah returns one surah with Arabic text and a translation.
// @Summary Surah text
// @Description Returns a surah's ayahs in the Uthmani Arabic edition merged with a translation edition.
// @Tags quran
// @Produce json
// @Param id path int true "Surah number (1-114)"
// @Param translation query string false "Translation edition (default en.asad)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /surah/{id} [get]
func (h *Handler) GetSurah(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 || id > 114 {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_SURAH", "surah id must be an integer in [1, 114]")
		return
	}

	translation := r.URL.Query().Get("translation")
	if translation == "" {
		translation = "en.asad"
	}
	if !editionPattern.MatchString(translation) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_EDITION", "translation must be an edition identifier like en.asad")
		return
	}

	cacheKey := fmt.Sprintf("surah:%d:%s", id, translation)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLQuranText, true)
		return
	}

	surah, err := h.quran.Surah(r.Context(), id, translation)
	if err != nil {
		h.logger.Warn("surah fetch failed", "surah", id, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Surah unavailable")
		return
	}

	data, err := json.Marshal(map[string]interface{}{"surah": surah})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLQuranText)
	respond.WriteJSON(w, data, etag, cache.TTLQuranText, false)
}

// GetParaList returns metadata for all 30 paras.
// @Summary Para index
// @Description Returns the juz reading divisions with names and start points.
// @Tags quran
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /quran/para [get]
func (h *Handler) GetParaList(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"para": content.Paras(),
	})
}

// GetParaVerses returns one page of a para with word-by-word reading aids.
// @Summary Para verses
// @Description Returns a paginated slice of a juz with per-word translation, transliteration, and audio.
// @Tags quran
// @Produce json
// @Param id path int true "Para number (1-30)"
// @Param page query int false "Page (default 1)"
// @Param perPage query int false "Verses per page (5-20, default 10)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 502 {object} respond.ErrorResponse
// @Router /quran/para/{id} [get]
func (h *Handler) GetParaVerses(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || !content.ValidPara(id) {
		respond.WriteError(w, http.StatusBadRequest, "INVALID_PARA", "para id must be an integer in [1, 30]")
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_PAGE", "page must be a positive integer")
			return
		}
	}
	perPage := 10
	if raw := r.URL.Query().Get("perPage"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil || perPage < 5 || perPage > 20 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_PER_PAGE", "perPage must be an integer in [5, 20]")
			return
		}
	}

	cacheKey := fmt.Sprintf("para:%d:%d:%d", id, page, perPage)
	if data, etag, ok := h.cache.Get(cacheKey); ok {
		if cache.CheckETagMatch(r.Header.Get("If-None-Match"), etag) {
			respond.WriteNotModified(w, etag)
			return
		}
		respond.WriteJSON(w, data, etag, cache.TTLQuranText, true)
		return
	}

	verses, err := h.quranCom.VersesByJuz(r.Context(), id, page, perPage)
	if err != nil {
		h.logger.Warn("para fetch failed", "para", id, "page", page, "error", err)
		respond.WriteError(w, http.StatusBadGateway, "UPSTREAM_ERROR", "Para verses unavailable")
		return
	}

	data, err := json.Marshal(map[string]interface{}{
		"paraId": id,
		"verses": verses.Verses,
		"pagination": map[string]interface{}{
			"page":         verses.Page,
			"hasMore":      verses.HasMore,
			"totalPages":   verses.TotalPages,
			"totalRecords": verses.TotalRecords,
		},
	})
	if err != nil {
		respond.WriteError(w, http.StatusInternalServerError, "ENCODING_ERROR", "Failed to encode response")
		return
	}
	etag := h.cache.Set(cacheKey, data, cache.TTLQuranText)
	respond.WriteJSON(w, data, etag, cache.TTLQuranText, false)
}
