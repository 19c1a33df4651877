package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-pricing/internal/checkout"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

func TestReadRequestsArray(t *testing.T) {
	reqs, err := readRequests(strings.NewReader(`
	  [{"user_id":1,"items":[{"price":100,"qty":1}]}, 5, {"user_id":"b"}]`))
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	require.Equal(t, json.Number("1"), reqs[0]["user_id"])
	require.Nil(t, reqs[1])
	require.Equal(t, "b", reqs[2]["user_id"])
}

func TestReadRequestsStream(t *testing.T) {
	reqs, err := readRequests(strings.NewReader("{\"user_id\":1}\n\n{\"user_id\":2}\n"))
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	require.Equal(t, json.Number("2"), reqs[1]["user_id"])
}

func TestReadRequestsEmptyAndInvalid(t *testing.T) {
	reqs, err := readRequests(strings.NewReader("  \n"))
	require.NoError(t, err)
	require.Empty(t, reqs)

	_, err = readRequests(strings.NewReader(`[{"user_id":1}`))
	require.Error(t, err)

	_, err = readRequests(strings.NewReader("{\"user_id\":1}\n{oops"))
	require.Error(t, err)
}

func decodeLines(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	sc := bufio.NewScanner(out)
	for sc.Scan() {
		var m map[string]any
		require.NoError(t, json.Unmarshal(sc.Bytes(), &m))
		lines = append(lines, m)
	}
	return lines
}

func sampleRequests(t *testing.T) []pricing.Request {
	t.Helper()
	reqs, err := readRequests(strings.NewReader(`[
		{"user_id":"u1","items":[{"price":100,"qty":1}]},
		{"user_id":"u2","items":[{"price":10,"qty":1}],"coupon":"BOGUS"},
		"nope"
	]`))
	require.NoError(t, err)
	return reqs
}

func assertSampleOutput(t *testing.T, failed int, out *bytes.Buffer) {
	t.Helper()
	require.Equal(t, 2, failed)
	lines := decodeLines(t, out)
	require.Len(t, lines, 3)

	require.Equal(t, float64(0), lines[0]["index"])
	data := lines[0]["data"].(map[string]any)
	require.Equal(t, "u1-1-X", data["order_id"])
	require.Equal(t, float64(121), data["total"])
	require.NotContains(t, lines[0], "error")

	errBody := lines[1]["error"].(map[string]any)
	require.Equal(t, "UNKNOWN_COUPON", errBody["code"])
	require.Equal(t, map[string]any{"field": "coupon"}, errBody["details"])

	require.Equal(t, "BAD_REQUEST", lines[2]["error"].(map[string]any)["code"])
}

func TestRunLocal(t *testing.T) {
	var out bytes.Buffer
	failed, err := run(context.Background(), &checkout.Service{Logger: zerolog.Nop()}, sampleRequests(t), &out)
	require.NoError(t, err)
	assertSampleOutput(t, failed, &out)
}

func TestRunRemote(t *testing.T) {
	h := &checkout.Handler{Svc: &checkout.Service{Logger: zerolog.Nop()}, Logger: zerolog.Nop()}
	var gotAuth string
	r := chi.NewRouter()
	r.Post(quotePath, func(w http.ResponseWriter, req *http.Request) {
		gotAuth = req.Header.Get("Authorization")
		h.Quote(w, req)
	})
	srv := httptest.NewServer(r)
	defer srv.Close()

	q := &remoteQuoter{Client: resilience.HTTPClient{Client: srv.Client()}, BaseURL: srv.URL + "/", Token: "tok"}
	var out bytes.Buffer
	failed, err := run(context.Background(), q, sampleRequests(t), &out)
	require.NoError(t, err)
	assertSampleOutput(t, failed, &out)
	require.Equal(t, "Bearer tok", gotAuth)
}

func TestRemoteQuoterUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	q := &remoteQuoter{Client: resilience.HTTPClient{Client: srv.Client()}, BaseURL: srv.URL}
	_, err := q.Quote(context.Background(), pricing.Request{"user_id": 1})
	require.ErrorContains(t, err, "502")
}

func TestExecuteExitCodes(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := execute([]string{"-log-level", "error"}, strings.NewReader(`{"user_id":1,"items":[{"price":100,"qty":1}]}`), &stdout, &stderr)
	require.Equal(t, 0, code)
	lines := decodeLines(t, &stdout)
	require.Len(t, lines, 1)
	require.Equal(t, float64(121), lines[0]["data"].(map[string]any)["total"])

	stdout.Reset()
	code = execute([]string{"-log-level", "error"}, strings.NewReader(`[{"user_id":1,"items":[]}]`), &stdout, &stderr)
	require.Equal(t, 1, code)

	code = execute([]string{"-log-level", "error"}, strings.NewReader(`{oops`), &stdout, &stderr)
	require.Equal(t, 2, code)

	code = execute([]string{"-in", filepath.Join(t.TempDir(), "missing.json")}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 2, code)

	code = execute([]string{"-bogus"}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 2, code)
}

func TestExecuteReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"user_id":"a","items":[{"price":50,"qty":1}],"coupon":"VIP"}]`), 0o600))

	var stdout, stderr bytes.Buffer
	require.Equal(t, 0, execute([]string{"-in", path, "-log-level", "error"}, strings.NewReader(""), &stdout, &stderr))
	lines := decodeLines(t, &stdout)
	require.Len(t, lines, 1)
	require.Equal(t, "a-1-X", lines[0]["data"].(map[string]any)["order_id"])
}
