package provider

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestHTTPYieldProvider_QuoteYield(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantYield  float64
		wantSource string // "" means the server URL
	}{
		{
			name:       "reported source",
			status:     http.StatusOK,
			body:       `{"yield_quintals_per_acre": 6.25, "source": "krishi-model-v2"}`,
			wantYield:  6.25,
			wantSource: "krishi-model-v2",
		},
		{
			name:      "missing source falls back to endpoint",
			status:    http.StatusOK,
			body:      `{"yield_quintals_per_acre": 7}`,
			wantYield: 7,
		},
		{
			name:      "non-string source falls back to endpoint",
			status:    http.StatusOK,
			body:      `{"yield_quintals_per_acre": 7, "source": 12}`,
			wantYield: 7,
		},
		{
			name:      "other 2xx accepted",
			status:    http.StatusAccepted,
			body:      `{"yield_quintals_per_acre": 3.1, "source": "x"}`,
			wantYield: 3.1, wantSource: "x",
		},
		{name: "server error", status: http.StatusInternalServerError, body: `{"yield_quintals_per_acre": 1}`, wantErr: true},
		{name: "not found", status: http.StatusNotFound, body: ``, wantErr: true},
		{name: "missing field", status: http.StatusOK, body: `{"yield": 4}`, wantErr: true},
		{name: "string yield", status: http.StatusOK, body: `{"yield_quintals_per_acre": "4.2"}`, wantErr: true},
		{name: "negative yield", status: http.StatusOK, body: `{"yield_quintals_per_acre": -1}`, wantErr: true},
		{name: "not json", status: http.StatusOK, body: `<html>maintenance</html>`, wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			p := NewHTTPYieldProvider(srv.URL, time.Second)
			quote, err := p.QuoteYield(context.Background(), YieldQuery{Crop: "Ragi"})
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantYield, quote.YieldPerAcre)
			wantSource := tc.wantSource
			if wantSource == "" {
				wantSource = srv.URL
			}
			require.Equal(t, wantSource, quote.Source)
		})
	}
}

func TestHTTPYieldProvider_SendsQueryParameters(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.URL.Query())
		_, _ = w.Write([]byte(`{"yield_quintals_per_acre": 5}`))
	}))
	defer srv.Close()

	p := NewHTTPYieldProvider(srv.URL, time.Second)
	_, err := p.QuoteYield(context.Background(), YieldQuery{
		Crop:           "Paddy",
		District:       "Mandya",
		State:          "Karnataka",
		SoilType:       "Clay Loam",
		Season:         "Rabi (Winter)",
		IrrigationType: "Canal",
	})
	require.NoError(t, err)

	q := got.Load().(url.Values)
	require.Equal(t, []string{"Paddy"}, q["crop"])
	require.Equal(t, []string{"Mandya"}, q["district"])
	require.Equal(t, []string{"Karnataka"}, q["state"])
	require.Equal(t, []string{"Clay Loam"}, q["soil_type"])
	require.Equal(t, []string{"Rabi (Winter)"}, q["season"])
	require.Equal(t, []string{"Canal"}, q["irrigation_type"])
}

func TestHTTPYieldProvider_SingleAttemptWithinTimeout(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewHTTPYieldProvider(srv.URL, 50*time.Millisecond)
	start := time.Now()
	_, err := p.QuoteYield(context.Background(), YieldQuery{Crop: "Ragi"})

	require.Error(t, err)
	require.Less(t, time.Since(start), 2*time.Second)
	require.Equal(t, int32(1), calls.Load())
}

func TestMockYieldProvider(t *testing.T) {
	m := NewMockYieldProvider(YieldQuote{YieldPerAcre: 2, Source: "mock"})
	q, err := m.QuoteYield(context.Background(), YieldQuery{Crop: "Tur"})
	require.NoError(t, err)
	require.Equal(t, 2.0, q.YieldPerAcre)

	m.FailWith(errors.New("down"))
	_, err = m.QuoteYield(context.Background(), YieldQuery{Crop: "Tur"})
	require.Error(t, err)
	require.Len(t, m.Calls(), 2)
}
