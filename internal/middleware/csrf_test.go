// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

const testToken = "0123456789abcdef"

// recordFailure returns a FailureFunc that stores the error and answers 403.
func recordFailure(got *error) FailureFunc {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		*got = err
		w.WriteHeader(http.StatusForbidden)
	}
}

func TestCSRFSetsCookie(t *testing.T) {
	for _, secure := range []bool{true, false} {
		var tokenInCtx string
		h := CSRF(secure, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenInCtx = CSRFTokenFromCtx(r.Context())
		}))

		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest("GET", "/login", nil))

		var cookie *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == CSRFCookieName {
				cookie = c
			}
		}
		if cookie == nil {
			t.Fatal("CSRF cookie not set")
		}
		if cookie.Secure != secure {
			t.Errorf("cookie Secure: got %v, want %v", cookie.Secure, secure)
		}
		if cookie.SameSite != http.SameSiteStrictMode {
			t.Errorf("cookie SameSite: got %v, want StrictMode", cookie.SameSite)
		}
		if len(cookie.Value) != 2*csrfTokenLength {
			t.Errorf("token length = %d", len(cookie.Value))
		}
		if tokenInCtx != cookie.Value {
			t.Errorf("context token %q != cookie %q", tokenInCtx, cookie.Value)
		}
	}
}

func TestCSRFReusesExistingCookie(t *testing.T) {
	var tokenInCtx string
	h := CSRF(false, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenInCtx = CSRFTokenFromCtx(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testToken})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if len(rr.Result().Cookies()) != 0 {
		t.Error("no new cookie expected when one exists")
	}
	if tokenInCtx != testToken {
		t.Errorf("context token = %q, want %q", tokenInCtx, testToken)
	}
}

func TestCSRFValidation(t *testing.T) {
	form := func(token string) (string, string) {
		v := url.Values{"title": {"x"}}
		if token != "" {
			v.Set(CSRFFormField, token)
		}
		return v.Encode(), "application/x-www-form-urlencoded"
	}

	multipartBody := func(token string) (string, string) {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		mw.WriteField(CSRFFormField, token)
		fw, _ := mw.CreateFormFile("image", "a.png")
		fw.Write([]byte("png"))
		mw.Close()
		return buf.String(), mw.FormDataContentType()
	}

	tests := []struct {
		name    string
		body    func(string) (string, string)
		token   string
		header  string
		wantErr error
	}{
		{name: "valid form token", body: form, token: testToken},
		{name: "valid multipart token", body: multipartBody, token: testToken},
		{name: "valid header token", body: form, header: testToken},
		{name: "missing token", body: form, wantErr: ErrCSRFInvalid},
		{name: "wrong token", body: form, token: "nope", wantErr: ErrCSRFInvalid},
		{name: "wrong multipart token", body: multipartBody, token: "nope", wantErr: ErrCSRFInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failure error
			inner, called := okHandler()
			h := CSRF(false, recordFailure(&failure))(inner)

			body, ct := tt.body(tt.token)
			req := httptest.NewRequest("POST", "/admin/salvar", strings.NewReader(body))
			req.Header.Set("Content-Type", ct)
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testToken})
			if tt.header != "" {
				req.Header.Set(CSRFHeaderName, tt.header)
			}

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, req)

			if tt.wantErr == nil {
				if !*called {
					t.Errorf("handler not called, failure = %v", failure)
				}
				return
			}
			if *called {
				t.Error("handler should not run")
			}
			if !errors.Is(failure, tt.wantErr) {
				t.Errorf("failure = %v, want %v", failure, tt.wantErr)
			}
			if rr.Code != http.StatusForbidden {
				t.Errorf("status = %d, want 403", rr.Code)
			}
		})
	}
}

func TestCSRFOversizeBodyReportsMaxBytesError(t *testing.T) {
	var failure error
	inner, called := okHandler()
	h := LimitBody(64)(CSRF(false, recordFailure(&failure))(inner))

	body := url.Values{CSRFFormField: {testToken}, "content": {strings.Repeat("x", 1000)}}.Encode()
	req := httptest.NewRequest("POST", "/admin/salvar", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testToken})

	h.ServeHTTP(httptest.NewRecorder(), req)

	if *called {
		t.Error("handler should not run")
	}
	var mbe *http.MaxBytesError
	if !errors.As(failure, &mbe) {
		t.Errorf("failure = %v, want *http.MaxBytesError", failure)
	}
}

func TestCSRFQuery(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		wantOK bool
	}{
		{"matching token", "?csrf_token=" + testToken, true},
		{"missing token", "", false},
		{"wrong token", "?csrf_token=bad", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var failure error
			inner, called := okHandler()
			h := CSRF(false, nil)(CSRFQuery(recordFailure(&failure))(inner))

			req := httptest.NewRequest("GET", "/admin/apagar/1"+tt.query, nil)
			req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: testToken})
			h.ServeHTTP(httptest.NewRecorder(), req)

			if *called != tt.wantOK {
				t.Errorf("handler called = %v, want %v", *called, tt.wantOK)
			}
			if !tt.wantOK && !errors.Is(failure, ErrCSRFInvalid) {
				t.Errorf("failure = %v", failure)
			}
		})
	}
}
