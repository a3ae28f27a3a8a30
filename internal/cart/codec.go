package cart

import "encoding/json"

// EncodeSnapshot serializes line items as a JSON array of
// {menu, size, quantity} objects.
func EncodeSnapshot(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// DecodeSnapshot restores line items from a stored snapshot. Entries that do
// not parse or break the line-item invariants are dropped. Quantities above
// MaxLineQuantity are capped. Entries sharing an identity key are merged in
// first-seen order. The dropped count is returned for logging.
func DecodeSnapshot(data []byte) ([]LineItem, int) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0
	}

	items := make([]LineItem, 0, len(raw))
	index := make(map[Key]int, len(raw))
	dropped := 0
	for _, entry := range raw {
		item, ok := decodeEntry(entry)
		if !ok {
			dropped++
			continue
		}
		if pos, exists := index[item.Key()]; exists {
			items[pos].Quantity = addQuantity(items[pos].Quantity, item.Quantity)
			continue
		}
		index[item.Key()] = len(items)
		items = append(items, item)
	}
	return items, dropped
}

func decodeEntry(entry json.RawMessage) (LineItem, bool) {
	var item LineItem
	if err := json.Unmarshal(entry, &item); err != nil {
		return LineItem{}, false
	}
	item.Size = normalizeSize(item.Size)
	if !validMenu(item.Menu) || item.Quantity < 1 {
		return LineItem{}, false
	}
	item.Quantity = clampQuantity(item.Quantity)
	return item, true
}

// validMenu is the admission rule shared by Add and DecodeSnapshot, so that
// anything the store accepts also survives a reload.
func validMenu(m Menu) bool {
	return m.ID != "" && m.Price >= 0 && m.Price <= MaxUnitPrice
}
