package profile

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestFromRequestMintsAndKeeps(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	id := FromRequest(w, r)
	if uuid.Validate(id) != nil {
		t.Fatalf("minted id %q is not a uuid", id)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != id {
		t.Fatalf("cookie not set: %v", cookies)
	}

	// second request presents the cookie and keeps its id
	w2 := httptest.NewRecorder()
	r2 := httptest.NewRequest(http.MethodGet, "/", nil)
	r2.AddCookie(cookies[0])
	if got := FromRequest(w2, r2); got != id {
		t.Errorf("id changed across requests: %q -> %q", id, got)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Error("no new cookie should be set when one is presented")
	}
}

func TestFromRequestRejectsGarbageCookie(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "not-a-uuid"})

	id := FromRequest(w, r)
	if uuid.Validate(id) != nil {
		t.Fatalf("expected a fresh uuid, got %q", id)
	}
	if len(w.Result().Cookies()) != 1 {
		t.Error("a replacement cookie should be set")
	}
}
