package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/halopax/unlockd/internal/config"
)

// Upstream action names, fixed by the supplier API.
const (
	actionPlaceOrder  = "placeimeiorder"
	actionCheckOrder  = "checkimeiorder"
	actionBalance     = "balance"
	actionServiceList = "imeiservicelist"
)

type dhruClient struct {
	http *http.Client
	log  *zap.Logger
}

// NewClient builds the production supplier client. The request timeout
// bounds every upstream call; a timeout surfaces as a transport error.
func NewClient(cfg config.Config, log *zap.Logger) Client {
	return &dhruClient{
		http: &http.Client{Timeout: cfg.SupplierTimeout},
		log:  log.Named("supplier.gateway"),
	}
}

func (c *dhruClient) PlaceOrder(ctx context.Context, creds Credentials, input OrderInput) (*Result, error) {
	params := url.Values{}
	params.Set("serviceid", input.ServiceID)
	if input.IMEI != "" {
		params.Set("imei", input.IMEI)
	}
	if input.FileName != "" {
		params.Set("filename", input.FileName)
		params.Set("file", input.FileData)
	}
	if input.Reference != "" {
		params.Set("reference", input.Reference)
	}

	raw, err := c.call(ctx, creds, actionPlaceOrder, params)
	if err != nil {
		return nil, err
	}
	return normalize(raw), nil
}

func (c *dhruClient) CheckStatus(ctx context.Context, creds Credentials, supplierOrderID string) (*Result, error) {
	params := url.Values{}
	params.Set("orderid", supplierOrderID)

	raw, err := c.call(ctx, creds, actionCheckOrder, params)
	if err != nil {
		return nil, err
	}
	return normalize(raw), nil
}

func (c *dhruClient) Balance(ctx context.Context, creds Credentials) (*Balance, error) {
	raw, err := c.call(ctx, creds, actionBalance, url.Values{})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode balance response: %w", err)
	}

	if !strings.EqualFold(pickString(payload, "status", "STATUS"), "SUCCESS") {
		return nil, fmt.Errorf("supplier balance error: %s",
			pickString(payload, "errorMessage", "error", "message"))
	}

	return &Balance{
		Balance:  pickString(payload, "balance", "credit", "creditraw"),
		Currency: pickString(payload, "currency", "currencycode"),
	}, nil
}

func (c *dhruClient) ListServices(ctx context.Context, creds Credentials) ([]RemoteService, error) {
	raw, err := c.call(ctx, creds, actionServiceList, url.Values{})
	if err != nil {
		return nil, err
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode service list response: %w", err)
	}

	if !strings.EqualFold(pickString(payload, "status", "STATUS"), "SUCCESS") {
		return nil, fmt.Errorf("supplier service list error: %s",
			pickString(payload, "errorMessage", "error", "message"))
	}

	items := pickList(payload, "services", "SERVICES", "list", "LIST")
	services := make([]RemoteService, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		id := pickString(entry, "serviceid", "serviceId", "service_id", "id")
		if id == "" {
			continue
		}

		services = append(services, RemoteService{
			ServiceID:    id,
			Name:         pickString(entry, "servicename", "name", "service_name"),
			Category:     pickString(entry, "category", "group", "groupname"),
			Kind:         pickString(entry, "servicetype", "type", "kind"),
			Price:        toMinorUnits(firstPresent(entry, "credit", "price", "cost")),
			DeliveryTime: pickString(entry, "deliverytime", "delivery_time", "time"),
		})
	}
	return services, nil
}

// call performs one form-encoded POST against the supplier endpoint and
// returns the raw response body.
func (c *dhruClient) call(ctx context.Context, creds Credentials, action string, params url.Values) (json.RawMessage, error) {
	form := url.Values{}
	form.Set("username", creds.Username)
	form.Set("apiaccesskey", creds.APIKey)
	form.Set("action", action)
	for key, values := range params {
		for _, v := range values {
			form.Add(key, v)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supplier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("read supplier response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warn("supplier returned non-2xx",
			zap.String("action", action),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("supplier returned status %d", resp.StatusCode)
	}

	return body, nil
}

// normalize maps the loosely-typed upstream payload onto Result,
// probing the known synonym for each logical field in order.
func normalize(raw json.RawMessage) *Result {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &Result{
			Success:      false,
			ErrorMessage: "unparseable supplier response",
			Raw:          raw,
		}
	}

	status := pickString(payload, "status", "STATUS")
	success := strings.EqualFold(status, "SUCCESS")

	reported := pickString(payload, "orderStatus", "orderstatus", "order_status")
	if reported == "" {
		reported = status
	}

	return &Result{
		Success:         success,
		SupplierOrderID: pickString(payload, "orderId", "orderid", "order_id", "id"),
		Status:          reported,
		Code:            pickString(payload, "code", "unlockcode", "result"),
		ErrorCode:       pickString(payload, "errorCode", "errorcode", "error_code"),
		ErrorMessage:    pickString(payload, "errorMessage", "error", "message"),
		Raw:             raw,
	}
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func pickString(m map[string]any, keys ...string) string {
	switch v := firstPresent(m, keys...).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func pickList(m map[string]any, keys ...string) []any {
	if v, ok := firstPresent(m, keys...).([]any); ok {
		return v
	}
	return nil
}

// toMinorUnits converts an upstream price, reported as either a number
// or a decimal string in major units, into minor units.
func toMinorUnits(v any) int64 {
	switch val := v.(type) {
	case float64:
		return int64(math.Round(val * 100))
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0
		}
		return int64(math.Round(f * 100))
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0
		}
		return int64(math.Round(f * 100))
	default:
		return 0
	}
}
