package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/noah-isme/toko-pricing/internal/checkout"
	"github.com/noah-isme/toko-pricing/internal/common"
	"github.com/noah-isme/toko-pricing/internal/pricing"
	"github.com/noah-isme/toko-pricing/internal/resilience"
)

const quotePath = "/api/v1/checkout/quote"

type quoter interface {
	Quote(ctx context.Context, req pricing.Request) (pricing.OrderResult, error)
}

type resultLine struct {
	Index int                  `json:"index"`
	Data  *pricing.OrderResult `json:"data,omitempty"`
	Error *common.ErrorBody    `json:"error,omitempty"`
}

var errNotObject = common.NewAppError("BAD_REQUEST", "request must be a JSON object", http.StatusBadRequest, nil)

// readRequests accepts either a single JSON array or a stream of JSON values.
// Elements that are not objects are kept as nil and rejected when quoted.
func readRequests(r io.Reader) ([]pricing.Request, error) {
	br := bufio.NewReader(r)
	first, err := firstNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()
	var values []any
	if first == '[' {
		if err := dec.Decode(&values); err != nil {
			return nil, fmt.Errorf("decode array: %w", err)
		}
	} else {
		for {
			var v any
			err := dec.Decode(&v)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("decode value %d: %w", len(values), err)
			}
			values = append(values, v)
		}
	}

	out := make([]pricing.Request, len(values))
	for i, v := range values {
		if obj, ok := v.(map[string]any); ok {
			out[i] = pricing.Request(obj)
		}
	}
	return out, nil
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !strings.ContainsRune(" \t\r\n", rune(b)) {
			return b, br.UnreadByte()
		}
	}
}

// run quotes every request in order and writes one JSON line per request.
// It returns how many requests were rejected.
func run(ctx context.Context, q quoter, reqs []pricing.Request, w io.Writer) (int, error) {
	enc := json.NewEncoder(w)
	failed := 0
	for i, req := range reqs {
		line := resultLine{Index: i}
		var err error
		if req == nil {
			err = errNotObject
		} else {
			var res pricing.OrderResult
			res, err = q.Quote(ctx, req)
			if err == nil {
				line.Data = &res
			}
		}
		if err != nil {
			failed++
			appErr := checkout.ToAppError(err)
			line.Error = &common.ErrorBody{Code: appErr.Code, Message: appErr.Message, Details: appErr.Details}
		}
		if err := enc.Encode(line); err != nil {
			return failed, err
		}
	}
	return failed, nil
}

// remoteQuoter posts requests to a running pricing API. Quotes are pure, so
// failed attempts are retried.
type remoteQuoter struct {
	Client  resilience.HTTPClient
	BaseURL string
	Token   string
}

func (q *remoteQuoter) Quote(ctx context.Context, req pricing.Request) (pricing.OrderResult, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return pricing.OrderResult{}, fmt.Errorf("encode request: %w", err)
	}
	url := strings.TrimRight(q.BaseURL, "/") + quotePath
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return pricing.OrderResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if q.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+q.Token)
	}

	resp, err := q.Client.Do(ctx, httpReq)
	if err != nil {
		return pricing.OrderResult{}, fmt.Errorf("post quote: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Data  *pricing.OrderResult `json:"data"`
		Error *common.ErrorBody    `json:"error"`
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&envelope); err != nil {
		return pricing.OrderResult{}, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode == http.StatusOK && envelope.Data != nil {
		return *envelope.Data, nil
	}
	if envelope.Error != nil {
		appErr := common.NewAppError(envelope.Error.Code, envelope.Error.Message, resp.StatusCode, nil)
		return pricing.OrderResult{}, appErr.WithDetails(envelope.Error.Details)
	}
	return pricing.OrderResult{}, fmt.Errorf("unexpected response status %d", resp.StatusCode)
}
