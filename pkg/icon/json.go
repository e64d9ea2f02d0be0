package icon

import (
	"encoding/json"
	"fmt"
)

// wireIcon is the cache representation. Attributes are stored as an ordered
// list of pairs so that a round trip preserves attribute order.
type wireIcon struct {
	Content    string      `json:"content"`
	Attributes [][2]string `json:"attributes"`
}

// MarshalJSON implements json.Marshaler.
func (i Icon) MarshalJSON() ([]byte, error) {
	w := wireIcon{Content: i.content, Attributes: make([][2]string, 0, i.attrs.Len())}
	for name, value := range i.attrs.All() {
		w.Attributes = append(w.Attributes, [2]string{name, value})
	}
	return json.Marshal(w)
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Icon) UnmarshalJSON(data []byte) error {
	var w wireIcon
	if err := json.Unmarshal(data, &w); err != nil {
		return fmt.Errorf("decode icon: %w", err)
	}
	var attrs Attributes
	for _, pair := range w.Attributes {
		attrs = attrs.With(pair[0], pair[1])
	}
	*i = New(w.Content, attrs)
	return nil
}
