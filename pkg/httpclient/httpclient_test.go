package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestGetResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q, want application/json", got)
		}
		w.Write([]byte(`{"id":"1","name":"first"}`))
	}))
	defer server.Close()

	headers := http.Header{"Accept": []string{"application/json"}}
	got, err := GetResource[*item](context.Background(), server.Client(), server.URL, headers, []int{200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1" || got.Name != "first" {
		t.Errorf("got %+v", got)
	}
}

func TestGetResource_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus bool
	}{
		{"unexpected status", http.StatusNotFound, `{}`, true},
		{"server error", http.StatusInternalServerError, `oops`, true},
		{"bad json", http.StatusOK, `{"id":`, false},
		{"not json", http.StatusOK, `<html></html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := GetResource[*item](context.Background(), server.Client(), server.URL, nil, []int{200})
			if err == nil {
				t.Fatal("expected error")
			}
			var statusErr *StatusError
			if got := errors.As(err, &statusErr); got != tt.wantStatus {
				t.Errorf("errors.As(StatusError) = %v, want %v (err: %v)", got, tt.wantStatus, err)
			}
			if tt.wantStatus && statusErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, tt.status)
			}
		})
	}
}

func TestPostResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}
		var in item
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		json.NewEncoder(w).Encode(item{ID: in.ID + "-echo", Name: in.Name})
	}))
	defer server.Close()

	got, err := PostResource[item](context.Background(), server.Client(), server.URL, item{ID: "a", Name: "b"}, nil, []int{200})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "a-echo" || got.Name != "b" {
		t.Errorf("got %+v", got)
	}
}
