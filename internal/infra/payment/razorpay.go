package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"freshmart/internal/usecase"

	"github.com/pkg/errors"
)

const (
	defaultBaseURL             = "https://api.razorpay.com/v1"
	currencyINR                = "INR"
	responseReadLimit    int64 = 1024
	defaultClientTimeout       = 10 * time.Second
)

// Razorpay Orders APIのクライアント
type Razorpay struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	keySecret  string
}

type Option func(*Razorpay)

func WithHTTPClient(client *http.Client) Option {
	return func(r *Razorpay) {
		if client != nil {
			r.httpClient = client
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(r *Razorpay) {
		if trimmed := strings.TrimSpace(baseURL); trimmed != "" {
			r.baseURL = strings.TrimRight(trimmed, "/")
		}
	}
}

func NewRazorpay(keyID, keySecret string, opts ...Option) *Razorpay {
	r := &Razorpay{
		httpClient: &http.Client{Timeout: defaultClientTimeout},
		baseURL:    defaultBaseURL,
		keyID:      keyID,
		keySecret:  keySecret,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// POST /orders。金額はパイサ。
func (r *Razorpay) CreateOrder(ctx context.Context, amountPaise int64, receipt string) (usecase.PaymentIntent, error) {
	payload, err := json.Marshal(createOrderRequest{
		Amount:   amountPaise,
		Currency: currencyINR,
		Receipt:  receipt,
	})
	if err != nil {
		return usecase.PaymentIntent{}, errors.Wrap(err, "marshal razorpay order")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return usecase.PaymentIntent{}, errors.Wrap(err, "build razorpay request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(r.keyID, r.keySecret)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return usecase.PaymentIntent{}, errors.Wrap(err, "execute razorpay request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseReadLimit))
		return usecase.PaymentIntent{}, errors.Wrap(
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"razorpay create order failed")
	}

	var out createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return usecase.PaymentIntent{}, errors.Wrap(err, "decode razorpay response")
	}

	return usecase.PaymentIntent{
		OrderID:  out.ID,
		Amount:   out.Amount,
		Currency: out.Currency,
		KeyID:    r.keyID,
	}, nil
}

func (r *Razorpay) VerifySignature(orderID, paymentID, signature string) bool {
	return verify(r.keySecret, orderID, paymentID, signature)
}
