// Package shortlink serves shareable room invite links: a redirect into
// the web client, a QR rendering of that redirect, and a per-code scan
// counter.
package shortlink

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/SexyZoe/AFL-Player-Guesser-sub000/game"
)

const qrSize = 320 // mobile-friendly

type Handler struct {
	clientURL string
	log       zerolog.Logger

	mu   sync.Mutex
	hits map[string]int
}

// NewHandler builds a short-link handler pointing at the web client base
// URL, e.g. "https://play.example.com".
func NewHandler(clientURL string, log zerolog.Logger) *Handler {
	return &Handler{
		clientURL: clientURL,
		log:       log,
		hits:      make(map[string]int),
	}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/r/:code", h.Redirect)
	r.GET("/r/:code/stats", h.Stats)
	r.GET("/qr/:code", h.QR)
}

// target is the client URL a short link resolves to. Codes are carried as
// a query parameter so the client can prefill the join form.
func (h *Handler) target(code string) string {
	return h.clientURL + "/?room=" + code
}

// Redirect bounces the visitor into the client with the room code
// prefilled. Counters are in-process only; a restart resets them.
func (h *Handler) Redirect(ctx *gin.Context) {
	code := ctx.Param("code")
	if !game.ValidCode(code) {
		ctx.Status(http.StatusNotFound)
		return
	}

	h.mu.Lock()
	h.hits[code]++
	count := h.hits[code]
	h.mu.Unlock()

	h.log.Info().
		Str("code", code).
		Int("hits", count).
		Str("ip", ctx.ClientIP()).
		Msg("short link scanned")

	ctx.Redirect(http.StatusFound, h.target(code))
}

// QR renders the redirect URL as a PNG, sized for phone cameras.
func (h *Handler) QR(ctx *gin.Context) {
	code := ctx.Param("code")
	if !game.ValidCode(code) {
		ctx.Status(http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(h.target(code), qrcode.Medium, qrSize)
	if err != nil {
		h.log.Error().Err(err).Str("code", code).Msg("qr generation failed")
		ctx.Status(http.StatusInternalServerError)
		return
	}

	ctx.Data(http.StatusOK, "image/png", png)
}

// Stats reports how many times a code's short link was followed.
func (h *Handler) Stats(ctx *gin.Context) {
	code := ctx.Param("code")
	if !game.ValidCode(code) {
		ctx.Status(http.StatusNotFound)
		return
	}

	h.mu.Lock()
	count := h.hits[code]
	h.mu.Unlock()

	ctx.JSON(http.StatusOK, gin.H{"code": code, "hits": count})
}
