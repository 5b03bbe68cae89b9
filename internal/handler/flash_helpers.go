package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"scenario-admin/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "flash_message"
	flashCookieTTL  = 5 * time.Second
	// Keeps the cookie well under the browser's 4KB limit.
	maxFlashMessageBytes = 1024
)

var (
	errFlashMalformed = errors.New("malformed flash cookie")
	errFlashSignature = errors.New("invalid flash cookie signature")
	errFlashExpired   = errors.New("flash cookie expired")
)

// flashPayload is what gets signed: the message plus its own expiry, so a
// replayed cookie is refused even if the browser kept it.
type flashPayload struct {
	web.Flash
	Expires int64 `json:"exp"`
}

// flashCookies writes and reads the one-shot banner shown after a redirect.
// The cookie value is base64(json) "." base64(HMAC-SHA256(base64(json))).
type flashCookies struct {
	secret []byte
	secure bool
	now    func() time.Time
}

func newFlashCookies(secret string, secure bool) *flashCookies {
	return &flashCookies{secret: []byte(secret), secure: secure, now: time.Now}
}

func (f *flashCookies) sign(payload string) string {
	mac := hmac.New(sha256.New, f.secret)
	mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (f *flashCookies) set(c *gin.Context, flash web.Flash) error {
	if len(flash.Message) > maxFlashMessageBytes {
		flash.Message = strings.ToValidUTF8(flash.Message[:maxFlashMessageBytes], "")
	}
	data, err := json.Marshal(flashPayload{Flash: flash, Expires: f.now().Add(flashCookieTTL).Unix()})
	if err != nil {
		return fmt.Errorf("failed to marshal flash message: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(data)

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, payload+"."+f.sign(payload), int(flashCookieTTL.Seconds()), "/", "", f.secure, true)
	return nil
}

// pop reads, verifies and clears the flash cookie. No cookie means no message
// and no error.
func (f *flashCookies) pop(c *gin.Context) (*web.Flash, error) {
	value, err := c.Cookie(flashCookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get flash cookie: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, "", -1, "/", "", f.secure, true)

	payload, sig, ok := strings.Cut(value, ".")
	if !ok || payload == "" {
		return nil, errFlashMalformed
	}
	if !hmac.Equal([]byte(sig), []byte(f.sign(payload))) {
		return nil, errFlashSignature
	}
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errFlashMalformed, err)
	}
	var p flashPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", errFlashMalformed, err)
	}
	if f.now().Unix() > p.Expires {
		return nil, errFlashExpired
	}
	return &p.Flash, nil
}
