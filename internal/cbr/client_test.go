package cbr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

const sheet = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="04.05.2023" name="Foreign Currency Market">
<Valute ID="R01235"><NumCode>840</NumCode><CharCode>USD</CharCode><Nominal>1</Nominal><Name>Доллар США</Name><Value>79,2507</Value></Valute>
<Valute ID="R01239"><NumCode>978</NumCode><CharCode>EUR</CharCode><Nominal>1</Nominal><Name>Евро</Name><Value>87,6525</Value></Valute>
<Valute ID="R01200"><NumCode>344</NumCode><CharCode>HKD</CharCode><Nominal>10</Nominal><Name>Гонконгских долларов</Name><Value>100,9600</Value></Valute>
</ValCurs>`

func encodeSheet(t *testing.T) []byte {
	t.Helper()
	b, err := charmap.Windows1251.NewEncoder().Bytes([]byte(sheet))
	if err != nil {
		t.Fatalf("encoding sheet: %v", err)
	}
	return b
}

func TestFetchRates(t *testing.T) {
	body := encodeSheet(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date_req"); got != "04/05/2023" {
			t.Errorf("date_req = %q, want 04/05/2023", got)
		}
		w.Header().Set("Content-Type", "application/xml")
		w.Write(body)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Millisecond, 1)
	rates, err := client.FetchRates(context.Background(), time.Date(2023, time.May, 4, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		code string
		want string
	}{
		{"USD", "79.2507"},
		{"EUR", "87.6525"},
		{"HKD", "10.096"},
	}
	for _, tt := range tests {
		if got := rates[tt.code]; !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("%s = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestFetchRatesRetryOn429(t *testing.T) {
	var attempts atomic.Int32
	body := encodeSheet(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write(body)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Millisecond, 2)
	if _, err := client.FetchRates(context.Background(), time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestFetchRatesHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Millisecond, 2)
	if _, err := client.FetchRates(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseRatesMalformedValue(t *testing.T) {
	_, err := parseRates([]byte(`<?xml version="1.0"?><ValCurs><Valute><CharCode>USD</CharCode><Nominal>1</Nominal><Value>n/a</Value></Valute></ValCurs>`))
	if err == nil {
		t.Fatal("expected error for malformed value")
	}
}
