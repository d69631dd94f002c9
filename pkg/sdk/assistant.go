package curalink

import (
	"context"
	"net/http"
	"net/url"
	"time"

	chiTransport "github.com/kailas-cloud/curalink/internal/transport/chi"
)

// Question is a smart search request. Leave History empty and set
// ConversationID to continue a conversation stored by the gateway.
type Question struct {
	Question       string
	History        []ChatMessage
	ConversationID string
	Service        string
}

// QuickSearch matches patients and studies by name or id prefix.
func (c *Client) QuickSearch(ctx context.Context, service, q string) (_ QuickResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("quick_search", start, err) }()

	params := url.Values{"q": {q}}
	if service != "" {
		params.Set(chiTransport.ServiceParam, service)
	}
	var out QuickResult
	if _, err = c.get(ctx, "/api/quick-search", c.withService(params), &out); err != nil {
		return QuickResult{}, err
	}
	return out, nil
}

// Ask asks the archive assistant a natural-language question.
func (c *Client) Ask(ctx context.Context, q Question) (_ Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	service := q.Service
	if service == "" {
		service = c.service
	}
	body := chiTransport.SmartSearchRequest{
		Question:       q.Question,
		History:        q.History,
		ConversationID: q.ConversationID,
		WebAppService:  service,
	}
	var out Answer
	if _, err = c.do(ctx, http.MethodPost, "/api/smart-search", nil, body, &out); err != nil {
		return Answer{}, err
	}
	return out, nil
}

// Usage reports assistant token consumption. An empty period means the current day.
func (c *Client) Usage(ctx context.Context, period UsagePeriod) (_ UsageReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("usage", start, err) }()

	var params url.Values
	if period != "" {
		params = url.Values{"period": {string(period)}}
	}
	var out UsageReport
	if _, err = c.get(ctx, "/api/assistant/usage", params, &out); err != nil {
		return UsageReport{}, err
	}
	return out, nil
}
