package diagnosis

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const samplePage = `<!doctype html>
<html><head>
<title>  Pizzaria Bella
  Napoli </title>
<meta name="description" content="Pizza artesanal no forno a lenha">
</head><body>
<h1>Delivery em 30 minutos</h1>
<h2>Cardápio</h2><h2></h2><h2>Promoções</h2><h2>Unidades</h2><h2>Contato</h2><h2>Trabalhe conosco</h2>
</body></html>`

func TestSiteFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/vazio" {
			w.Write([]byte("<html><body></body></html>"))
			return
		}
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewSiteFetcher(2 * time.Second)
	site, err := f.Fetch(context.Background(), srv.URL+"/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if site.Title != "Pizzaria Bella Napoli" {
		t.Errorf("unexpected title %q", site.Title)
	}
	if site.Description != "Pizza artesanal no forno a lenha" {
		t.Errorf("unexpected description %q", site.Description)
	}
	if len(site.Headings) != maxHeadings || site.Headings[0] != "Delivery em 30 minutos" || site.Headings[2] != "Promoções" {
		t.Errorf("unexpected headings %v", site.Headings)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/nada"); err == nil {
		t.Error("expected error on 404")
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/vazio"); err == nil {
		t.Error("expected error on empty page")
	}
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "", false},
		{"pizzariabella.com.br", "https://pizzariabella.com.br", false},
		{" http://exemplo.com/home ", "http://exemplo.com/home", false},
		{"ftp://exemplo.com", "", true},
		{"https://", "", true},
	}

	for _, tc := range tests {
		got, err := NormalizeURL(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("%q: expected ErrInvalidInput got %v", tc.in, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Errorf("%q: expected %q got %q (%v)", tc.in, tc.want, got, err)
		}
	}
}
