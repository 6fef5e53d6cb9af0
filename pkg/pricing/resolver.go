package pricing

import (
	"encoding/json"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"strings"
)

// ResolveProductID finds the catalog product for the item at index.
// The typed item field wins; otherwise the raw verification payload is
// consulted at the same position, either as items[i].product_id or under
// data.json.items[i].product_id.
func ResolveProductID(op *entities.Operation, index int) (string, error) {
	if index < 0 || index >= len(op.Items) {
		return "", domain.ErrProductUnresolved
	}
	if id := op.Items[index].ProductID; id != nil && strings.TrimSpace(*id) != "" {
		return strings.TrimSpace(*id), nil
	}
	if id := rawProductID(op.RawPayload, index); id != "" {
		return id, nil
	}
	return "", domain.ErrProductUnresolved
}

type rawItems struct {
	Items []rawItem `json:"items"`
	Data  struct {
		JSON struct {
			Items []rawItem `json:"items"`
		} `json:"json"`
	} `json:"data"`
}

type rawItem struct {
	ProductID json.RawMessage `json:"product_id"`
}

func rawProductID(raw []byte, index int) string {
	if len(raw) == 0 {
		return ""
	}
	var payload rawItems
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	items := payload.Items
	if len(items) == 0 {
		items = payload.Data.JSON.Items
	}
	if index >= len(items) {
		return ""
	}
	return scalarString(items[index].ProductID)
}

// scalarString accepts both string and numeric product ids.
func scalarString(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err == nil {
		return n.String()
	}
	return ""
}
