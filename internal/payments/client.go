package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rvaldezm/orderstream/pkg/config"
	pkgerrors "github.com/rvaldezm/orderstream/pkg/errors"
	"github.com/rvaldezm/orderstream/pkg/types"
)

var errBaseURLRequired = errors.New("payments base url is required")

// HTTPClient settles charges against a remote payments API. It satisfies
// Charger so the order pipeline does not care which side of the wire the
// payments service lives on.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

// NewHTTPClient builds a payments API client from configuration.
func NewHTTPClient(cfg config.PaymentsConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errBaseURLRequired
	}
	return &HTTPClient{
		baseURL: base,
		http:    &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (c *HTTPClient) Charge(ctx context.Context, input ChargeInput) (*ChargeResult, error) {
	body, err := json.Marshal(ChargeRequest{
		OrderID:       input.OrderRef,
		CustomerID:    input.CustomerID,
		Amount:        input.Amount,
		PaymentMethod: int64(input.Method),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling charge request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building charge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "payments service unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading payments response")
	}

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, c.decodeError(resp.StatusCode, raw)
	}

	var envelope struct {
		Data PaymentResponse `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding payments response")
	}
	if envelope.Data.ID <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payments response missing payment id")
	}

	return &ChargeResult{
		PaymentID: envelope.Data.ID,
		ChargedAt: envelope.Data.ChargedAt,
	}, nil
}

func (c *HTTPClient) decodeError(status int, raw []byte) error {
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Code != "" {
		return pkgerrors.New(pkgerrors.Code(envelope.Error.Code), envelope.Error.Message).
			WithDetails(envelope.Error.Details)
	}
	if status >= 500 {
		return pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("payments service returned %d", status))
	}
	return pkgerrors.New(pkgerrors.CodePayment, fmt.Sprintf("charge rejected with status %d", status))
}
