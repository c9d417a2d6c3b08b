package entity

// CartItem is a single cart line. Lines created optimistically before the
// backend confirms them carry a negative provisional ID.
type CartItem struct {
	ID       int64 `json:"id"`
	Book     Book  `json:"book"`
	Quantity int   `json:"quantity"`
}

// Provisional reports whether this line has not been confirmed by the backend.
func (it CartItem) Provisional() bool {
	return it.ID < 0
}
