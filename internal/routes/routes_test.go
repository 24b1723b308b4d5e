package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPostURLs(t *testing.T) {
	testCases := []struct {
		id         string
		wantEdit   string
		wantDelete string
	}{
		{"abc", "/posts/abc/edit", "/posts/abc/delete"},
		{"9999", "/posts/9999/edit", "/posts/9999/delete"},
		{"a b", "/posts/a%20b/edit", "/posts/a%20b/delete"},
	}

	for _, tc := range testCases {
		t.Run(tc.id, func(t *testing.T) {
			if got := PostEdit(tc.id); got != tc.wantEdit {
				t.Errorf("Expected %q, got %q", tc.wantEdit, got)
			}
			if got := PostDelete(tc.id); got != tc.wantDelete {
				t.Errorf("Expected %q, got %q", tc.wantDelete, got)
			}
		})
	}
}

func TestPatternsMatchBuiltURLs(t *testing.T) {
	mux := http.NewServeMux()

	var gotPattern, gotID string
	record := func(w http.ResponseWriter, r *http.Request) {
		gotPattern = r.Pattern
		gotID = r.PathValue(PathID)
	}
	for _, p := range []string{HomePattern, PostsListPattern, PostCreatePattern, PostEditPattern, PostDeletePattern} {
		mux.HandleFunc(p, record)
	}

	testCases := []struct {
		path        string
		wantPattern string
		wantID      string
	}{
		{Home, HomePattern, ""},
		{PostsList, PostsListPattern, ""},
		{PostCreate, PostCreatePattern, ""},
		{PostEdit("42"), PostEditPattern, "42"},
		{PostDelete("42"), PostDeletePattern, "42"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			gotPattern, gotID = "", ""
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tc.path, nil))

			if gotPattern != tc.wantPattern {
				t.Errorf("Expected pattern %q, got %q", tc.wantPattern, gotPattern)
			}
			if gotID != tc.wantID {
				t.Errorf("Expected id %q, got %q", tc.wantID, gotID)
			}
		})
	}
}
