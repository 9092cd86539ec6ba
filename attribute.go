package gosqs

// AttrType tags the variant carried by an Attribute.
type AttrType string

const (
	// AttrString holds arbitrary text. An unset attribute is serialized as AttrString with empty Text.
	AttrString AttrType = "String"
	// AttrNumber holds a decimal number encoded as text, matching SQS's wire representation.
	AttrNumber AttrType = "Number"
	// AttrBinary holds a raw byte payload.
	AttrBinary AttrType = "Binary"
)

// Attribute is a tagged variant of {String, Number, Binary}. It is the in-memory counterpart of an SQS
// MessageAttributeValue.
type Attribute struct {
	Type  AttrType
	Text  string
	Bytes []byte
}

// StringAttr builds a String-typed Attribute.
func StringAttr(s string) Attribute { return Attribute{Type: AttrString, Text: s} }

// NumberAttr builds a Number-typed Attribute from a decimal string.
func NumberAttr(decimal string) Attribute { return Attribute{Type: AttrNumber, Text: decimal} }

// BinaryAttr builds a Binary-typed Attribute.
func BinaryAttr(b []byte) Attribute { return Attribute{Type: AttrBinary, Bytes: b} }

// unsetAttr is the canonical decoding of a null/unset attribute value: an empty String. Used when the
// transport hands back a MessageAttributeValue entry with no value at all.
func unsetAttr() Attribute { return Attribute{Type: AttrString, Text: ""} }
