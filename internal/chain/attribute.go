package chain

// Attribute is one key/value pair of action metadata returned to the caller.
type Attribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Attr builds an attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}
