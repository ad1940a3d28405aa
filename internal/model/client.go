package model

// Holding is a single position in a client's portfolio.
type Holding struct {
	Symbol string  `json:"symbol"`
	Type   string  `json:"type"`
	Value  float64 `json:"value"`
}

// Portfolio summarizes a client's investable assets.
type Portfolio struct {
	TotalValue float64 `json:"total_value"`
	CashValue  float64 `json:"cash_value,omitempty"`
}

// ClientProfile is a validated client record. Owned by the caller and
// read-only to the pipeline.
type ClientProfile struct {
	ClientID   string         `json:"client_id"`
	Age        int            `json:"age"`
	Holdings   []Holding      `json:"holdings,omitempty"`
	Portfolio  Portfolio      `json:"portfolio"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Attribute resolves a criterion field against the profile. Well-known fields
// map to typed struct members; everything else falls through to the free-form
// attribute map. The second return is false when the field is absent.
func (c *ClientProfile) Attribute(field string) (any, bool) {
	switch field {
	case "client_id":
		return c.ClientID, true
	case "age":
		return c.Age, true
	case "portfolio_value":
		return c.Portfolio.TotalValue, true
	case "cash_value":
		return c.Portfolio.CashValue, true
	case "holding_types":
		types := make([]any, 0, len(c.Holdings))
		for _, h := range c.Holdings {
			types = append(types, h.Type)
		}
		return types, true
	}
	v, ok := c.Attributes[field]
	return v, ok
}
