// Package t24 is the boundary client for the core-banking system. It builds
// provider-specific requests and normalizes T24's heterogeneous response
// shapes into a single result type.
package t24

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Outcome classifies a gateway call. A business Failure is terminal for the
// movement; a TransportError is not, because the instruction may or may not
// have reached the core.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeFailure        Outcome = "failure"
	OutcomeTransportError Outcome = "transport_error"
)

// Result is the normalized gateway response. ExternalRef and StatusText are
// set on success; Reason carries the concatenated failure details or the
// transport error text.
type Result struct {
	Outcome     Outcome
	ExternalRef string
	StatusText  string
	Reason      string
}

// FundsTransfer is one debit/credit instruction.
type FundsTransfer struct {
	DebitAccount    string
	CreditAccount   string
	Amount          decimal.Decimal
	Currency        string
	Narrative       string
	TransactionType string
	Channel         string
}

// AccountDetail is the normalized shape of a T24 account lookup.
type AccountDetail struct {
	AccountNumber   string
	AccountName     string
	AccountCategory string
	WorkingBalance  decimal.Decimal
	Restricted      bool
}

// Client calls T24 over HTTP. It is not idempotent: the remote system has no
// request de-duplication, so callers must invoke PostMovement at most once
// per movement.
type Client struct {
	baseURL    string
	companyID  string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewClient(baseURL, companyID string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		companyID:  companyID,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type detail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// t24Response covers the three shapes the core returns: a header with the
// committed transaction id, an error-detail list, or an override-detail list.
type t24Response struct {
	Header *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"header"`
	Error *struct {
		Type            string   `json:"type"`
		ErrorDetails    []detail `json:"errorDetails"`
		OverrideDetails []detail `json:"overrideDetails"`
	} `json:"error"`
	Override *struct {
		OverrideDetails []detail `json:"overrideDetails"`
	} `json:"override"`
}

// joinDetails never drops partial error information: every message the core
// returned is concatenated with a consistent separator.
func joinDetails(groups ...[]detail) string {
	var msgs []string
	for _, g := range groups {
		for _, d := range g {
			if d.Message != "" {
				msgs = append(msgs, d.Message)
			}
		}
	}
	return strings.Join(msgs, "; ")
}

// PostMovement issues the funds-transfer instruction synchronously and
// normalizes the response. Network, timeout and unexpected-shape problems
// come back as OutcomeTransportError, never as OutcomeFailure.
func (c *Client) PostMovement(ctx context.Context, ft FundsTransfer) *Result {
	payload := map[string]any{
		"body": map[string]any{
			"debitAcctId":     ft.DebitAccount,
			"creditAcctId":    ft.CreditAccount,
			"debitAmount":     ft.Amount.StringFixed(2),
			"debitCurrency":   ft.Currency,
			"transactionType": ft.TransactionType,
			"paymentDetails":  ft.Narrative,
			"channel":         ft.Channel,
		},
	}

	endpoint := fmt.Sprintf("%s/party/createGtiFundsTransfer/%s", c.baseURL, url.PathEscape(ft.DebitAccount))
	body, err := c.post(ctx, endpoint, payload)
	if err != nil {
		c.logger.WithError(err).WithField("debit_account", ft.DebitAccount).
			Error("funds transfer did not complete cleanly")
		return &Result{Outcome: OutcomeTransportError, Reason: err.Error()}
	}

	var parsed t24Response
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.WithError(err).Error("unparseable funds-transfer response")
		return &Result{Outcome: OutcomeTransportError, Reason: fmt.Sprintf("decoding response: %v", err)}
	}

	if parsed.Error != nil {
		reason := joinDetails(parsed.Error.ErrorDetails, parsed.Error.OverrideDetails)
		if reason == "" {
			reason = "core banking rejected the instruction"
		}
		return &Result{Outcome: OutcomeFailure, Reason: reason}
	}
	if parsed.Override != nil {
		return &Result{Outcome: OutcomeFailure, Reason: joinDetails(parsed.Override.OverrideDetails)}
	}
	if parsed.Header != nil && parsed.Header.ID != "" {
		return &Result{
			Outcome:     OutcomeSuccess,
			ExternalRef: parsed.Header.ID,
			StatusText:  parsed.Header.Status,
		}
	}

	// 200 with none of the known shapes: treat as unknown, not failed.
	return &Result{Outcome: OutcomeTransportError, Reason: "unexpected response shape from core banking"}
}

// ReverseMovement asks the core to reverse a previously committed transfer.
func (c *Client) ReverseMovement(ctx context.Context, externalRef string) error {
	endpoint := fmt.Sprintf("%s/party/reversegtiFundsTransfer/%s", c.baseURL, url.PathEscape(externalRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("building reversal request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reversal request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(resp.Body)
		c.logger.WithField("external_ref", externalRef).Errorf("reversal rejected: %s", text)
		return fmt.Errorf("reversal rejected with status %d", resp.StatusCode)
	}
	return nil
}

// AccountDetails looks up an account in the core and normalizes the first
// body entry. A missing workingBalance means zero; a postingRestrict key
// present at all means the account is restricted.
func (c *Client) AccountDetails(ctx context.Context, accountNumber string) (*AccountDetail, error) {
	endpoint := fmt.Sprintf("%s/party/getGtiAccountDetails?accountNumber=%s", c.baseURL, url.QueryEscape(accountNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building account lookup: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("account lookup returned status %d", resp.StatusCode)
	}

	var parsed struct {
		Body []map[string]json.RawMessage `json:"body"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding account lookup: %w", err)
	}
	if len(parsed.Body) == 0 {
		return nil, nil
	}

	entry := parsed.Body[0]
	out := &AccountDetail{WorkingBalance: decimal.Zero}
	if raw, ok := entry["accountNo"]; ok {
		_ = json.Unmarshal(raw, &out.AccountNumber)
	}
	if raw, ok := entry["accountName"]; ok {
		_ = json.Unmarshal(raw, &out.AccountName)
	}
	if raw, ok := entry["accountCategory"]; ok {
		_ = json.Unmarshal(raw, &out.AccountCategory)
	}
	if raw, ok := entry["workingBalance"]; ok {
		_ = json.Unmarshal(raw, &out.WorkingBalance)
	}
	_, out.Restricted = entry["postingRestrict"]
	return out, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("companyId", c.companyID)
}
