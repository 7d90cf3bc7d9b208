package francetravail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, search http.HandlerFunc) *Client {
	t.Helper()

	tokens := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		tokens++
		if r.Method != http.MethodPost {
			t.Errorf("token request method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse token form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"token_type":   "Bearer",
			"expires_in":   1500,
		})
	})
	mux.HandleFunc("/offres/search", search)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := New(zap.NewNop(), "id", "secret")
	client.APIURL = server.URL
	client.TokenURL = server.URL + "/token"
	return client
}

func TestSearchDecodesOffers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("authorization header = %q", got)
		}
		if got := r.URL.Query().Get("motsCles"); got != "python developer" {
			t.Errorf("motsCles = %q", got)
		}
		if got := r.URL.Query().Get("sort"); got != "1" {
			t.Errorf("sort = %q", got)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"resultats": []map[string]any{{
				"id":           "196XYZ",
				"intitule":     "Développeur Python",
				"description":  "Django et Docker au quotidien",
				"typeContrat":  "CDI",
				"dateCreation": "2026-08-20T09:30:00+02:00",
				"entreprise":   map[string]any{"nom": "ACME"},
				"lieuTravail":  map[string]any{"libelle": "Paris 12e"},
				"origineOffre": map[string]any{"urlOrigine": "https://example.com/196XYZ"},
			}},
		})
	})

	offers, err := client.Search(context.Background(), "python developer", 1, 30)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer, got %d", len(offers))
	}

	offer := offers[0]
	if offer.ID != "196XYZ" {
		t.Fatalf("id = %q", offer.ID)
	}
	if offer.CompanyName != "ACME" {
		t.Fatalf("company = %q", offer.CompanyName)
	}
	if offer.Location != "Paris 12e" {
		t.Fatalf("location = %q", offer.Location)
	}
	if offer.URL != "https://example.com/196XYZ" {
		t.Fatalf("url = %q", offer.URL)
	}

	if offer.PublishedAt == nil {
		t.Fatalf("published_at must be parsed")
	}
	want := time.Date(2026, 8, 20, 7, 30, 0, 0, time.UTC)
	if !offer.PublishedAt.Equal(want) || offer.PublishedAt.Location() != time.UTC {
		t.Fatalf("published_at = %v, want %v in UTC", offer.PublishedAt, want)
	}

	if offer.Raw["typeContrat"] != "CDI" {
		t.Fatalf("raw payload must be kept, got %v", offer.Raw)
	}
}

func TestSearchRangeParameter(t *testing.T) {
	var gotRange string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotRange = r.URL.Query().Get("range")
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()

	if _, err := client.Search(ctx, "python", 1, 30); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotRange != "0-29" {
		t.Fatalf("page 1 range = %q, want 0-29", gotRange)
	}

	if _, err := client.Search(ctx, "python", 3, 30); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotRange != "60-89" {
		t.Fatalf("page 3 range = %q, want 60-89", gotRange)
	}
}

func TestSearchNoContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	offers, err := client.Search(context.Background(), "unicorn wrangler", 1, 30)
	if err != nil {
		t.Fatalf("204 is not an error: %v", err)
	}
	if len(offers) != 0 {
		t.Fatalf("expected no offers, got %d", len(offers))
	}
}

func TestSearchPartialContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPartialContent)
		json.NewEncoder(w).Encode(map[string]any{
			"resultats": []map[string]any{{"id": "A"}, {"id": "B"}},
		})
	})

	offers, err := client.Search(context.Background(), "python", 1, 2)
	if err != nil {
		t.Fatalf("206 is not an error: %v", err)
	}
	if len(offers) != 2 {
		t.Fatalf("expected 2 offers, got %d", len(offers))
	}
}

func TestSearchServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	if _, err := client.Search(context.Background(), "python", 1, 30); err == nil {
		t.Fatalf("expected an error for a 500 response")
	}
}

func TestSearchReusesToken(t *testing.T) {
	tokenRequests := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		tokenRequests++
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   1500,
		})
	})
	mux.HandleFunc("/offres/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := New(zap.NewNop(), "id", "secret")
	client.APIURL = server.URL
	client.TokenURL = server.URL + "/token"

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := client.Search(ctx, "python", 1, 30); err != nil {
			t.Fatalf("search %d: %v", i, err)
		}
	}

	if tokenRequests != 1 {
		t.Fatalf("expected 1 token request, got %d", tokenRequests)
	}
}

func TestSearchConcurrentSharesToken(t *testing.T) {
	var tokenRequests atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, _ *http.Request) {
		tokenRequests.Add(1)
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-token",
			"expires_in":   1500,
		})
	})
	mux.HandleFunc("/offres/search", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := New(zap.NewNop(), "id", "secret")
	client.APIURL = server.URL
	client.TokenURL = server.URL + "/token"

	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Search(ctx, "python", 1, 30); err != nil {
				t.Errorf("concurrent search: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := tokenRequests.Load(); got != 1 {
		t.Fatalf("expected 1 token request, got %d", got)
	}
}

func TestOfferUnparseableDate(t *testing.T) {
	t.Parallel()

	offer, err := offerFromPayload(map[string]any{
		"id":           "X",
		"dateCreation": "not-a-date",
	})
	if err != nil {
		t.Fatalf("a bad date must not fail the payload: %v", err)
	}
	if offer.PublishedAt != nil {
		t.Fatalf("unparseable date must yield an undated offer, got %v", offer.PublishedAt)
	}
}

func TestOfferToMatching(t *testing.T) {
	t.Parallel()

	published := time.Date(2026, 8, 20, 7, 30, 0, 0, time.UTC)
	transport := &Offer{
		ID:           "196XYZ",
		Title:        "Développeur Python",
		CompanyName:  "ACME",
		Description:  "Django",
		URL:          "https://example.com/196XYZ",
		Location:     "Paris",
		ContractType: "CDI",
		PublishedAt:  &published,
		Raw:          map[string]any{"id": "196XYZ"},
	}

	domain := transport.ToMatching()
	if domain.RemoteID != "196XYZ" {
		t.Fatalf("remote id = %q", domain.RemoteID)
	}
	if domain.DatePosted == nil || !domain.DatePosted.Equal(published) {
		t.Fatalf("date_posted = %v", domain.DatePosted)
	}
	if domain.RawData["id"] != "196XYZ" {
		t.Fatalf("raw data lost: %v", domain.RawData)
	}
}
