package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"net/http"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "noticias_csrf"

	// CSRFHeaderName is an alternative to the form field for scripted requests.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the hidden form field name.
	CSRFFormField = "csrf_token"

	// multipartMemory is how much of a multipart body is held in memory
	// before parts spill to temporary files.
	multipartMemory = 8 << 20

	csrfKey contextKey = "csrf"
)

// ErrCSRFInvalid is passed to the failure handler when the submitted token
// is missing or does not match the cookie.
var ErrCSRFInvalid = errors.New("csrf token mismatch")

// FailureFunc renders a rejected request. err is ErrCSRFInvalid or the
// error met while parsing the form (e.g. *http.MaxBytesError).
type FailureFunc func(w http.ResponseWriter, r *http.Request, err error)

// CSRF provides double-submit cookie CSRF protection. It makes sure a
// token cookie exists, exposes the token to templates through the request
// context, and requires state-changing requests (POST, PUT, PATCH, DELETE)
// to echo it back as a header or form field. The form, multipart included,
// is parsed here so handlers read it with r.FormValue / r.FormFile.
func CSRF(secure bool, onFailure FailureFunc) func(http.Handler) http.Handler {
	if onFailure == nil {
		onFailure = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, "Forbidden", http.StatusForbidden)
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ""
			if cookie, err := r.Cookie(CSRFCookieName); err == nil {
				token = cookie.Value
			}
			if token == "" {
				var err error
				if token, err = generateCSRFToken(); err != nil {
					onFailure(w, r, fmt.Errorf("generate csrf token: %w", err))
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
			}

			r = r.WithContext(context.WithValue(r.Context(), csrfKey, token))

			// Safe methods don't need CSRF validation.
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			submitted := r.Header.Get(CSRFHeaderName)
			if submitted == "" {
				if err := parseForm(r); err != nil {
					onFailure(w, r, err)
					return
				}
				submitted = r.PostFormValue(CSRFFormField)
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				onFailure(w, r, ErrCSRFInvalid)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromCtx returns the token for the current request, for hidden
// form fields.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey).(string)
	return token
}

func parseForm(r *http.Request) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(multipartMemory); err != nil {
			return fmt.Errorf("parse multipart form: %w", err)
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return fmt.Errorf("parse form: %w", err)
	}
	return nil
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CSRFQuery protects a state-changing GET route (a plain link) by
// requiring the token in the csrf_token query parameter. Must run after
// CSRF.
func CSRFQuery(onFailure FailureFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := CSRFTokenFromCtx(r.Context())
			submitted := r.URL.Query().Get(CSRFFormField)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				if onFailure == nil {
					http.Error(w, "Forbidden", http.StatusForbidden)
					return
				}
				onFailure(w, r, ErrCSRFInvalid)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
