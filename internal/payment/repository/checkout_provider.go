package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/BigT001/studyexpressuk-sub002/internal/payment/domain"
	errprocess "github.com/BigT001/studyexpressuk-sub002/pkg/err"
)

// HTTPCheckoutProvider 对外部金流的 HTTP 介接。金流本身是黑盒，
// 我们只送结帐参数、收导向网址。
type HTTPCheckoutProvider struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCheckoutProvider create a HTTPCheckoutProvider
func NewHTTPCheckoutProvider(baseURL string, timeout time.Duration) *HTTPCheckoutProvider {
	return &HTTPCheckoutProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// CreateCheckout 建立结帐
func (p *HTTPCheckoutProvider) CreateCheckout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Unknown, "marshal checkout request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Unknown, "build checkout request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "call checkout provider", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errprocess.New(errprocess.Storage, fmt.Sprintf("checkout provider returned %d", resp.StatusCode))
	}

	var session domain.CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, errprocess.Wrap(errprocess.Storage, "decode checkout response", err)
	}
	if session.Reference == "" {
		session.Reference = req.Reference
	}
	return &session, nil
}
