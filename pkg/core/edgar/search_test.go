package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeCompany drives the stub submissions endpoint.
type fakeCompany struct {
	name    string
	forms   []string
	dates   []string
	accNums []string
}

func newSearchTestServer(t *testing.T, companies map[string]fakeCompany, atomCIKs []string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/cgi-bin/browse-edgar", func(w http.ResponseWriter, r *http.Request) {
		for _, cik := range atomCIKs {
			fmt.Fprintf(w, "<entry><CIK>%s</CIK></entry>\n", cik)
		}
	})

	mux.HandleFunc("/search-index", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(SearchResponse{})
	})

	mux.HandleFunc("/submissions/", func(w http.ResponseWriter, r *http.Request) {
		// Path is /submissions/CIK0000000123.json
		var cik string
		fmt.Sscanf(r.URL.Path, "/submissions/CIK%s", &cik)
		cik = cik[:len(cik)-len(".json")]
		company, ok := companies[trimLeadingZeros(cik)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(SubmissionsResponse{
			CIK:  cik,
			Name: company.name,
			Filings: SubFilings{Recent: RecentFilings{
				AccessionNumber: company.accNums,
				FilingDate:      company.dates,
				Form:            company.forms,
			}},
		})
	})

	return httptest.NewServer(mux)
}

func trimLeadingZeros(s string) string {
	for len(s) > 1 && s[0] == '0' {
		s = s[1:]
	}
	return s
}

func newTestClient(server *httptest.Server, opts ...Option) *Client {
	base := []Option{
		WithEndpoints(server.URL, server.URL, server.URL+"/search-index"),
		WithRateLimit(10000), // no throttling in tests
	}
	return NewClient(append(base, opts...)...)
}

func TestSearchFirms(t *testing.T) {
	companies := map[string]fakeCompany{
		"100": {
			name:  "Example Ventures Fund LP",
			forms: []string{"D", "D/A"},
			dates: []string{"2023-01-15", "2024-03-01"},
		},
		"200": {
			name:  "Example Ventures Fund II LP",
			forms: []string{"D"},
			dates: []string{"2024-06-01"},
		},
		// No Form D filings at all: must be excluded.
		"300": {
			name:  "Example Ventures Advisors LP",
			forms: []string{"10-K"},
			dates: []string{"2024-01-01"},
		},
		// Stale: last Form D before the relevance floor.
		"400": {
			name:  "Example Ventures Fund I LP",
			forms: []string{"D"},
			dates: []string{"2014-05-01"},
		},
	}
	server := newSearchTestServer(t, companies, []string{"0000000100", "0000000200", "0000000300", "0000000400"})
	defer server.Close()

	client := newTestClient(server)
	results, err := client.SearchFirms(context.Background(), "Example Ventures", 10)
	if err != nil {
		t.Fatalf("SearchFirms failed: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d: %+v", len(results), results)
	}
	// Most recent filing first.
	if results[0].CIK != "200" {
		t.Errorf("Expected CIK 200 first (newest filing), got %s", results[0].CIK)
	}
	if results[1].CIK != "100" {
		t.Errorf("Expected CIK 100 second, got %s", results[1].CIK)
	}
	if results[1].FilingCount != 2 {
		t.Errorf("Expected 2 Form D filings for CIK 100, got %d", results[1].FilingCount)
	}
	if results[1].RecentFiling != "2024-03-01" {
		t.Errorf("Expected recent filing 2024-03-01, got %s", results[1].RecentFiling)
	}
}

func TestSearchFirmsDedupesIdenticalNames(t *testing.T) {
	companies := map[string]fakeCompany{
		"100": {name: "Dup Capital Fund LP", forms: []string{"D"}, dates: []string{"2024-01-01"}},
		"200": {name: "Dup Capital Fund LP", forms: []string{"D"}, dates: []string{"2024-02-01"}},
	}
	server := newSearchTestServer(t, companies, []string{"100", "200"})
	defer server.Close()

	client := newTestClient(server)
	results, err := client.SearchFirms(context.Background(), "Dup Capital", 10)
	if err != nil {
		t.Fatalf("SearchFirms failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected identical names deduped to 1 result, got %d", len(results))
	}
}

func TestSearchFirmsMaxResults(t *testing.T) {
	companies := make(map[string]fakeCompany)
	var ciks []string
	for i := 1; i <= 6; i++ {
		cik := fmt.Sprintf("%d00", i)
		companies[cik] = fakeCompany{
			name:  fmt.Sprintf("Roll Capital Fund %d LP", i),
			forms: []string{"D"},
			dates: []string{fmt.Sprintf("2024-0%d-01", i)},
		}
		ciks = append(ciks, cik)
	}
	server := newSearchTestServer(t, companies, ciks)
	defer server.Close()

	client := newTestClient(server)
	results, err := client.SearchFirms(context.Background(), "Roll Capital", 3)
	if err != nil {
		t.Fatalf("SearchFirms failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected results capped at 3, got %d", len(results))
	}
	// Newest first after the cap.
	if results[0].RecentFiling != "2024-06-01" {
		t.Errorf("Expected newest filing first, got %s", results[0].RecentFiling)
	}
}

func TestSearchFirmsEmptyQuery(t *testing.T) {
	client := NewClient()
	results, err := client.SearchFirms(context.Background(), "   ", 10)
	if err != nil {
		t.Fatalf("Empty query should not error, got %v", err)
	}
	if results != nil {
		t.Errorf("Expected nil results for empty query, got %+v", results)
	}
}

func TestNameVariations(t *testing.T) {
	vars := nameVariations("Acme Capital")
	if vars[0] != "Acme Capital" {
		t.Errorf("First variation should be the literal query, got %q", vars[0])
	}
	found := false
	for _, v := range vars {
		if v == "Acme Ventures" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected Capital->Ventures substitution in %v", vars)
	}
	// Multi-word query also tries the first word alone.
	found = false
	for _, v := range vars {
		if v == "Acme" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected first-word variation in %v", vars)
	}

	single := nameVariations("Benchmark")
	if len(single) != 1 {
		t.Errorf("Single-word query should only produce itself, got %v", single)
	}
}

func TestTitleCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"acme ventures", "Acme Ventures"},
		{"acme capital fund ii", "Acme Capital Fund Ii"},
		{"  spaced   out  ", "Spaced Out"},
	}
	for _, c := range cases {
		if got := titleCase(c.in); got != c.want {
			t.Errorf("titleCase(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestPadCIK(t *testing.T) {
	if got := padCIK("1578090"); got != "0001578090" {
		t.Errorf("Expected 0001578090, got %s", got)
	}
	if got := padCIK("0001578090"); got != "0001578090" {
		t.Errorf("Re-padding should be stable, got %s", got)
	}
}
