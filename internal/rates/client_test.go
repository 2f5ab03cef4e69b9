package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dailyXML = `<?xml version="1.0" encoding="windows-1251"?>
<ValCurs Date="05.03.2024" name="Foreign Currency Market">
  <Valute ID="R01235">
    <NumCode>840</NumCode>
    <CharCode>USD</CharCode>
    <Nominal>1</Nominal>
    <Name>US Dollar</Name>
    <Value>95,1234</Value>
  </Valute>
  <Valute ID="R01820">
    <NumCode>392</NumCode>
    <CharCode>JPY</CharCode>
    <Nominal>100</Nominal>
    <Name>Yen</Name>
    <Value>60,5000</Value>
  </Valute>
  <Valute ID="R00000">
    <NumCode>000</NumCode>
    <CharCode>BAD</CharCode>
    <Nominal>0</Nominal>
    <Name>Broken nominal</Name>
    <Value>10,0</Value>
  </Valute>
</ValCurs>`

func TestClient_RatesFor(t *testing.T) {
	t.Parallel()

	t.Run("parses the XML daily document", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/scripts/XML_daily.asp", r.URL.Path)
			assert.Equal(t, "05/03/2024", r.URL.Query().Get("date_req"))
			_, _ = w.Write([]byte(dailyXML))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		got, err := client.RatesFor(context.Background(), "05/03/2024")
		require.NoError(t, err)
		assert.Equal(t, "05/03/2024", got.Date)
		assert.Len(t, got.Rates, 2)
		assert.True(t, decimal.RequireFromString("95.1234").Equal(got.Rates["USD"]))
		// Value is quoted per 100 units, the stored rate is per single unit.
		assert.True(t, decimal.RequireFromString("0.6050").Equal(got.Rates["JPY"]))
	})

	t.Run("returns ErrEmptyResult when no entry is usable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<ValCurs Date="05.03.2024"><Valute><CharCode>USD</CharCode><Nominal>1</Nominal><Value>garbage</Value></Valute></ValCurs>`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		_, err := client.RatesFor(context.Background(), "05/03/2024")
		require.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("returns ErrParse on malformed XML", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`<ValCurs><Valute>`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		_, err := client.RatesFor(context.Background(), "05/03/2024")
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("returns ErrNetwork on non 200 response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		_, err := client.RatesFor(context.Background(), "05/03/2024")
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("returns ErrNetwork when the server is unreachable", func(t *testing.T) {
		t.Parallel()

		client := NewClient("http://127.0.0.1:1", "http://127.0.0.1:1", 100*time.Millisecond)
		_, err := client.RatesFor(context.Background(), "05/03/2024")
		require.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("treats timeout as ErrNetwork", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(dailyXML))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, 20*time.Millisecond)
		_, err := client.RatesFor(context.Background(), "05/03/2024")
		require.ErrorIs(t, err, ErrNetwork)
	})
}

func TestClient_Latest(t *testing.T) {
	t.Parallel()

	t.Run("parses the JSON latest document", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/latest.js", r.URL.Path)
			_, _ = w.Write([]byte(`{"date":"2024-03-05","rates":{"USD":95.1234,"EUR":103.25,"bad":-1}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		got, err := client.Latest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "05/03/2024", got.Date)
		assert.Len(t, got.Rates, 2)
		assert.True(t, decimal.RequireFromString("95.1234").Equal(got.Rates["USD"]))
		assert.True(t, decimal.RequireFromString("103.2500").Equal(got.Rates["EUR"]))
	})

	t.Run("returns ErrParse on malformed JSON", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"date":`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		_, err := client.Latest(context.Background())
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("returns ErrParse on unparseable date", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"date":"soon","rates":{"USD":95.1}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		_, err := client.Latest(context.Background())
		require.ErrorIs(t, err, ErrParse)
	})

	t.Run("returns ErrEmptyResult when rates are missing", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"date":"2024-03-05","rates":{}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		_, err := client.Latest(context.Background())
		require.ErrorIs(t, err, ErrEmptyResult)
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte(`{"date":"2024-03-05","rates":{"USD":95.1}}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, server.URL, time.Second)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := client.Latest(ctx)
		require.Error(t, err)
	})
}
