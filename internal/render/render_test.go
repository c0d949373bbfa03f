package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewParsesEmbeddedTemplates(t *testing.T) {
	r := testRenderer(t)

	for _, name := range []string{"login", "dashboard", "posts_list", "post_form", "localities_list", "locality_form", "users_list", "user_form", "user_detail", "audit_list", "settings_form"} {
		if _, ok := r.admin[name]; !ok {
			t.Errorf("admin template %q not parsed", name)
		}
	}
	for _, name := range []string{"home", "posts", "post", "localities", "locality", "donate", "about"} {
		if _, ok := r.public[name]; !ok {
			t.Errorf("public template %q not parsed", name)
		}
	}
}

func TestPageRendersWithBaseLayout(t *testing.T) {
	r := testRenderer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	r.Page(w, req, "dashboard", &PageData{
		Title:   "Dashboard",
		Section: "dashboard",
		Data:    map[string]any{"NewsCount": 3, "UpdateCount": 5, "LocalityCount": 8, "UserCount": 2},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "<title>Dashboard") {
		t.Error("page title missing from rendered output")
	}
	if !strings.Contains(body, "sidebar") {
		t.Error("base layout missing from rendered output")
	}
}

// The login page is standalone; it must not pull in the admin sidebar.
func TestPageRendersLoginStandalone(t *testing.T) {
	r := testRenderer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/login", nil)
	r.Page(w, req, "login", &PageData{Title: "Sign In", Error: "Invalid email or password."})

	body := w.Body.String()
	if strings.Contains(body, "sidebar") {
		t.Error("login page rendered inside the admin layout")
	}
	if !strings.Contains(body, "Invalid email or password.") {
		t.Error("error message missing from login page")
	}
}

func TestPageUnknownTemplate(t *testing.T) {
	r := testRenderer(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin/nope", nil)
	r.Page(w, req, "nope", nil)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestPublicRendersBilingual(t *testing.T) {
	r := testRenderer(t)

	data := map[string]any{
		"Lang": "ar", "Dir": "rtl", "RTL": true,
		"SiteName": "غرف الطوارئ", "Title": "الرئيسية", "AltPath": "/en",
	}
	out, err := r.Public("about", data)
	if err != nil {
		t.Fatalf("Public: %v", err)
	}
	body := string(out)
	if !strings.Contains(body, `dir="rtl"`) {
		t.Error("rtl direction missing from rendered page")
	}
	if !strings.Contains(body, `href="/en"`) {
		t.Error("language switch link missing")
	}
}

func TestPublicUnknownTemplate(t *testing.T) {
	r := testRenderer(t)

	if _, err := r.Public("nope", nil); err == nil {
		t.Error("expected an error for an unknown template")
	}
}
