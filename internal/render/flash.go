package render

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// FlashCookieName carries pending notifications across a redirect.
const FlashCookieName = "tb_flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-time notification shown on the next rendered page.
type Flash struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// maxFlashes bounds the cookie size.
const maxFlashes = 5

// SetFlash queues a notification for the next page the visitor sees.
// Several calls within one response accumulate.
func SetFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	pending := readFlashes(r)
	pending = append(pending, Flash{Type: kind, Message: msg})
	if len(pending) > maxFlashes {
		pending = pending[len(pending)-maxFlashes:]
	}

	raw, err := json.Marshal(pending)
	if err != nil {
		return
	}
	value := base64.RawURLEncoding.EncodeToString(raw)

	// Later SetFlash calls in the same response must see earlier ones.
	r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: value})
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlashes returns the pending notifications and clears the cookie.
func PopFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	flashes := readFlashes(r)
	if len(flashes) == 0 {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return flashes
}

// readFlashes decodes the last flash cookie on the request. Malformed
// values are dropped.
func readFlashes(r *http.Request) []Flash {
	var value string
	for _, c := range r.Cookies() {
		if c.Name == FlashCookieName {
			value = c.Value
		}
	}
	if value == "" {
		return nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
