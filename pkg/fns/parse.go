package fns

import (
	"encoding/json"
	"math"
	"pricecrowd-backend/domain"
	"strconv"
	"time"
)

var receiptDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"20060102T150405",
	"20060102T1504",
}

// ParseReceipt extracts a best-effort view of a verification response.
// Amounts come in kopecks and are returned in rubles. qrTime is the t=
// field used when the payload has no date.
func ParseReceipt(raw []byte, qrTime string) *domain.VerifiedReceipt {
	res := &domain.VerifiedReceipt{Raw: json.RawMessage(raw), Items: []domain.VerifiedItem{}}

	var root map[string]any
	if err := json.Unmarshal(raw, &root); err != nil {
		return res
	}
	node := receiptNode(root)

	res.Seller = firstString(node, "user", "retailPlace", "retailPlaceAddress", "sellerName")
	if seller, ok := node["seller"].(map[string]any); ok && res.Seller == "" {
		res.Seller = firstString(seller, "name")
	}

	res.Date = parseDate(node["dateTime"])
	if res.Date.IsZero() {
		res.Date = parseDate(qrTime)
	}

	items, _ := node["items"].([]any)
	var sum float64
	for _, it := range items {
		m, ok := it.(map[string]any)
		if !ok {
			continue
		}
		qty := number(m["quantity"])
		if qty == 0 {
			qty = 1
		}
		price := number(m["price"])
		lineSum := number(m["sum"])
		if price == 0 && lineSum != 0 {
			price = lineSum / qty
		}
		if lineSum == 0 {
			lineSum = price * qty
		}
		name := firstString(m, "name", "itemName")
		if name == "" {
			name = "Item"
		}
		res.Items = append(res.Items, domain.VerifiedItem{
			Name:     name,
			Price:    kopecks(price),
			Quantity: qty,
			Sum:      kopecks(lineSum),
		})
		sum += lineSum
	}

	if total := number(node["totalSum"]); total != 0 {
		res.Amount = kopecks(total)
	} else {
		res.Amount = kopecks(sum)
	}
	return res
}

func receiptNode(root map[string]any) map[string]any {
	if data, ok := root["data"].(map[string]any); ok {
		if j, ok := data["json"].(map[string]any); ok {
			return j
		}
		if _, ok := data["items"]; ok {
			return data
		}
	}
	if j, ok := root["json"].(map[string]any); ok {
		return j
	}
	return root
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func number(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	}
	return 0
}

func parseDate(v any) time.Time {
	switch d := v.(type) {
	case float64:
		if d > 10_000_000_000 {
			return time.UnixMilli(int64(d)).UTC()
		}
		return time.Unix(int64(d), 0).UTC()
	case string:
		for _, layout := range receiptDateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

func kopecks(v float64) float64 {
	return math.Round(v) / 100
}
