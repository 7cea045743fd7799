package ccnb

// TokenType is the 3-bit type carried by every non-close ccnb token.
type TokenType uint8

const (
	TTDTagOpen  TokenType = iota // numeric-tag-open: numval is a DTag
	TTDAttr                      // numeric-attribute: numval is the attribute's DTag
	TTTagOpen                    // string-tag-open: numval+1 raw name bytes follow
	TTAttr                       // string-attribute: numval+1 raw name bytes follow, then a UDATA value token
	TTBlob                       // binary blob: numval is the byte length, raw bytes follow
	TTUData                      // UTF-8 text: numval is the byte length, raw bytes follow
	TTClose                      // pops one level of nesting; carries no numval
)

// maxNumval bounds the accumulated value to keep overflow detectable with
// plain uint64 arithmetic; ccnb values are never this large in practice.
const maxNumval = 1<<56 - 1

func (tt TokenType) String() string {
	switch tt {
	case TTDTagOpen:
		return "DTagOpen"
	case TTDAttr:
		return "DAttr"
	case TTTagOpen:
		return "TagOpen"
	case TTAttr:
		return "Attr"
	case TTBlob:
		return "Blob"
	case TTUData:
		return "UData"
	case TTClose:
		return "Close"
	default:
		return "Unknown"
	}
}
