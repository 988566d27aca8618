// Package flash carries one-time notices across redirects.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"unicode/utf8"
)

// CookieName is the cookie used for one-time notices.
const CookieName = "yard_flash"

// maxMessageRunes keeps the cookie well under browser limits.
const maxMessageRunes = 512

// Kind classifies notice presentation.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notice is one pending message.
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Policy controls cookie attributes.
type Policy struct {
	// ForceSecure marks the cookie Secure even on plain HTTP requests, for
	// deployments behind a TLS-terminating proxy.
	ForceSecure bool
}

// Write stores a notice cookie for the next page render.
func Write(w http.ResponseWriter, r *http.Request, notice Notice) {
	WriteWithPolicy(w, r, notice, Policy{})
}

// WriteWithPolicy stores a notice cookie for the next page render.
func WriteWithPolicy(w http.ResponseWriter, r *http.Request, notice Notice, policy Policy) {
	if w == nil {
		return
	}
	normalized, ok := normalizeNotice(notice)
	if !ok {
		return
	}
	payload, err := json.Marshal(normalized)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   policy.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadAndClear reads and clears the notice cookie.
func ReadAndClear(w http.ResponseWriter, r *http.Request) (Notice, bool) {
	return ReadAndClearWithPolicy(w, r, Policy{})
}

// ReadAndClearWithPolicy reads and clears the notice cookie.
func ReadAndClearWithPolicy(w http.ResponseWriter, r *http.Request, policy Policy) (Notice, bool) {
	if r == nil {
		return Notice{}, false
	}
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return Notice{}, false
	}
	if w != nil {
		ClearWithPolicy(w, r, policy)
	}
	return decodeNotice(cookie.Value)
}

// ClearWithPolicy expires any notice cookie.
func ClearWithPolicy(w http.ResponseWriter, r *http.Request, policy Policy) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   policy.secure(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (p Policy) secure(r *http.Request) bool {
	if p.ForceSecure {
		return true
	}
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}

func decodeNotice(raw string) (Notice, bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return Notice{}, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return Notice{}, false
	}
	var notice Notice
	if err := json.Unmarshal(decoded, &notice); err != nil {
		return Notice{}, false
	}
	return normalizeNotice(notice)
}

func normalizeNotice(notice Notice) (Notice, bool) {
	notice.Message = strings.TrimSpace(notice.Message)
	if notice.Message == "" {
		return Notice{}, false
	}
	if utf8.RuneCountInString(notice.Message) > maxMessageRunes {
		notice.Message = string([]rune(notice.Message)[:maxMessageRunes])
	}
	notice.Kind = Kind(strings.ToLower(strings.TrimSpace(string(notice.Kind))))
	switch notice.Kind {
	case KindSuccess, KindError:
		return notice, true
	default:
		return Notice{}, false
	}
}
