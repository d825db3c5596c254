package appsheet

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/prodmon/internal/production"
)

func TestSelector(t *testing.T) {
	cases := []struct {
		name string
		opts production.FetchOptions
		want string
	}{
		{"none", production.FetchOptions{}, ""},
		{"from only", production.FetchOptions{DateFrom: "2023-10-25"}, `[Ngày] >= "10/25/2023"`},
		{"to only", production.FetchOptions{DateTo: "2023-11-02"}, `[Ngày] <= "11/02/2023"`},
		{"both", production.FetchOptions{DateFrom: "2023-10-25", DateTo: "2023-10-27"}, `AND([Ngày] >= "10/25/2023", [Ngày] <= "10/27/2023")`},
		{"bad bound dropped", production.FetchOptions{DateFrom: "soon", DateTo: "2023-10-27"}, `[Ngày] <= "10/27/2023"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Selector(tc.opts))
		})
	}
}

func TestFetchRowsSendsFindAction(t *testing.T) {
	var captured findRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/apps/app-1/tables/B%E1%BA%A3ng%20theo%20d%C3%B5i%20s%E1%BA%A3n%20xu%E1%BA%A5t/Action", r.URL.EscapedPath())
		assert.Equal(t, "secret", r.Header.Get("ApplicationAccessKey"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))
		_, _ = w.Write([]byte(`[{"Ngày":"10/25/2023","Đơn hàng":"PO-1","Số lượng inputs":"1,000"},"skip"]`))
	}))
	defer srv.Close()

	client := NewClient(Config{AppID: "app-1", AccessKey: "secret", BaseURL: srv.URL}, srv.Client(), nil)
	result, err := client.FetchRows(context.Background(), production.FetchOptions{DateFrom: "2023-10-25", DateTo: "2023-10-27"})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	require.Len(t, result.Rows, 1)

	rec := production.NormalizeRow(result.Rows[0])
	assert.Equal(t, "2023-10-25", rec.Date)
	assert.Equal(t, 1000.0, rec.InputQty)

	assert.Equal(t, "Find", captured.Action)
	assert.Equal(t, "vi-VN", captured.Properties.Locale)
	assert.Equal(t, "Asia/Ho_Chi_Minh", captured.Properties.Timezone)
	assert.Equal(t, `AND([Ngày] >= "10/25/2023", [Ngày] <= "10/27/2023")`, captured.Selector)
}

func TestFetchRowsAcceptsRowsEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Rows":[{"Order":"A"},{"Order":"B"}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{AppID: "a", AccessKey: "k", BaseURL: srv.URL}, srv.Client(), nil)
	result, err := client.FetchRows(context.Background(), production.FetchOptions{})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "B", result.Rows[1]["Order"])
}

func TestFetchRowsUnexpectedShapeIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"Success":true}`))
	}))
	defer srv.Close()

	client := NewClient(Config{AppID: "a", AccessKey: "k", BaseURL: srv.URL}, srv.Client(), nil)
	result, err := client.FetchRows(context.Background(), production.FetchOptions{})
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.Empty(t, result.Rows)
}

func TestFetchRowsFallsBack(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer failing.Close()
	garbled := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>`))
	}))
	defer garbled.Close()

	cases := map[string]*Client{
		"not configured": NewClient(Config{}, nil, nil),
		"error status":   NewClient(Config{AppID: "a", AccessKey: "k", BaseURL: failing.URL}, failing.Client(), nil),
		"malformed body": NewClient(Config{AppID: "a", AccessKey: "k", BaseURL: garbled.URL}, garbled.Client(), nil),
	}
	for name, client := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := client.FetchRows(context.Background(), production.FetchOptions{})
			require.NoError(t, err)
			assert.True(t, result.Fallback)
			assert.Len(t, result.Rows, len(production.SampleRows()))
		})
	}
}

func TestFetchRowsCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	client := NewClient(Config{AppID: "a", AccessKey: "k", BaseURL: srv.URL}, srv.Client(), nil)
	_, err := client.FetchRows(ctx, production.FetchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}
