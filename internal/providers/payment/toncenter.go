package payment

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tonbox-app/tonbox/internal/config"
	paymentdomain "github.com/tonbox-app/tonbox/internal/providers/payment/domain"
	"go.uber.org/zap"
)

const pollInterval = 3 * time.Second

// ToncenterProcessor confirms TON transfers by polling the toncenter API
// for an inbound message to the owner wallet carrying the request's
// reference as its comment.
type ToncenterProcessor struct {
	client   *http.Client
	log      *zap.Logger
	endpoint string
	apiKey   string
	owner    string
	timeout  time.Duration
}

func NewToncenterProcessor(cfg config.PaymentConfig, log *zap.Logger) *ToncenterProcessor {
	return &ToncenterProcessor{
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log.Named("payment.toncenter"),
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		owner:    cfg.OwnerAddress,
		timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func (p *ToncenterProcessor) Charge(ctx context.Context, req paymentdomain.Request) error {
	if req.Reference == "" || req.AmountNano <= 0 {
		return paymentdomain.ErrPaymentFailed
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		confirmed, err := p.lookupTransfer(ctx, req)
		if err != nil {
			p.log.Warn("payment lookup failed",
				zap.String("user_id", req.UserID),
				zap.String("reference", req.Reference),
				zap.Error(err),
			)
		}
		if confirmed {
			p.log.Info("payment confirmed",
				zap.String("user_id", req.UserID),
				zap.String("reference", req.Reference),
				zap.Int64("amount_nano", req.AmountNano),
			)
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: no matching transfer for reference %s", paymentdomain.ErrPaymentFailed, req.Reference)
		case <-ticker.C:
		}
	}
}

type toncenterResponse struct {
	OK     bool `json:"ok"`
	Result []struct {
		InMsg struct {
			Value   string `json:"value"`
			Message string `json:"message"`
		} `json:"in_msg"`
	} `json:"result"`
}

func (p *ToncenterProcessor) lookupTransfer(ctx context.Context, req paymentdomain.Request) (bool, error) {
	q := url.Values{}
	q.Set("address", p.owner)
	q.Set("limit", "50")
	if p.apiKey != "" {
		q.Set("api_key", p.apiKey)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint+"/getTransactions?"+q.Encode(), nil)
	if err != nil {
		return false, err
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("toncenter returned status %d", resp.StatusCode)
	}

	var payload toncenterResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return false, err
	}
	if !payload.OK {
		return false, fmt.Errorf("toncenter response not ok")
	}

	for _, tx := range payload.Result {
		if !matchesComment(tx.InMsg.Message, req.Reference) {
			continue
		}
		value, err := strconv.ParseInt(tx.InMsg.Value, 10, 64)
		if err != nil {
			continue
		}
		if value >= req.AmountNano {
			return true, nil
		}
	}
	return false, nil
}

// Transfer comments arrive either as plain text or base64.
func matchesComment(message, reference string) bool {
	if message == reference {
		return true
	}
	decoded, err := base64.StdEncoding.DecodeString(message)
	if err != nil {
		return false
	}
	return string(decoded) == reference
}
