package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sort"

	"github.com/RaghavGalappanavar/Deployment/pkg/logger"
	"github.com/gin-gonic/gin"
)

// maxTracedBody caps how much of a request body PayloadTrace will buffer.
const maxTracedBody = 1 << 20

// PayloadShape summarizes a contract request body without its values.
type PayloadShape struct {
	Valid           bool     `json:"valid"`
	Keys            []string `json:"keys,omitempty"`
	DealDataKeys    []string `json:"dealDataKeys,omitempty"`
	HasCustomer     bool     `json:"hasCustomer"`
	HasFinance      bool     `json:"hasFinance"`
	HasRetailer     bool     `json:"hasRetailer"`
	HasMassOrders   bool     `json:"hasMassOrders"`
	MassOrdersCount int      `json:"massOrdersCount"`
}

// DescribePayload reports the structure of a contract creation body.
func DescribePayload(body []byte) PayloadShape {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		return PayloadShape{}
	}

	shape := PayloadShape{Valid: true, Keys: sortedKeys(top)}

	raw, ok := top["dealData"]
	if !ok {
		return shape
	}
	var deal map[string]json.RawMessage
	if err := json.Unmarshal(raw, &deal); err != nil {
		return shape
	}

	shape.DealDataKeys = sortedKeys(deal)
	shape.HasCustomer = present(deal, "customer")
	shape.HasFinance = present(deal, "customerFinanceDetails")
	shape.HasRetailer = present(deal, "retailerInfo")
	if orders, ok := deal["massOrders"]; ok {
		var items []json.RawMessage
		if json.Unmarshal(orders, &items) == nil {
			shape.HasMassOrders = true
			shape.MassOrdersCount = len(items)
		}
	}
	return shape
}

// PayloadTrace logs the shape of POST bodies at debug level and puts the
// body back for the handler. It is a no-op unless debug logging is on.
func PayloadTrace() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if c.Request.Method != http.MethodPost || c.Request.Body == nil || !logger.Enabled(ctx, slog.LevelDebug) {
			c.Next()
			return
		}

		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxTracedBody+1))
		rest := c.Request.Body
		c.Request.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(body), rest), Closer: rest}
		if err != nil {
			logger.Debug(ctx, "payload trace skipped", "error", err)
			c.Next()
			return
		}
		if len(body) > maxTracedBody {
			logger.Debug(ctx, "payload trace skipped", "reason", "body too large")
			c.Next()
			return
		}

		shape := DescribePayload(body)
		logger.Debug(ctx, "contract payload received",
			"path", c.Request.URL.Path,
			"bytes", len(body),
			"valid_json", shape.Valid,
			"keys", shape.Keys,
			"deal_data_keys", shape.DealDataKeys,
			"has_customer", shape.HasCustomer,
			"has_finance", shape.HasFinance,
			"has_retailer", shape.HasRetailer,
			"has_mass_orders", shape.HasMassOrders,
			"mass_orders_count", shape.MassOrdersCount,
		)

		c.Next()
	}
}

type readCloser struct {
	io.Reader
	io.Closer
}

func present(m map[string]json.RawMessage, key string) bool {
	v, ok := m[key]
	return ok && string(v) != "null"
}

func sortedKeys(m map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
