package ccnb

// AppendTokenHeader writes the varint+terminal-byte encoding of (tt,
// numval) to buf: continuation bytes (high bit clear, 7 payload bits,
// most significant first) followed by exactly one terminal byte (high bit
// set, low 3 bits token type, next 4 bits the low part of numval). The
// encoding is always minimal - no leading zero continuation byte - which
// is what lets a standalone 0x00 unambiguously mean Close.
func AppendTokenHeader(buf *Charbuf, tt TokenType, numval uint64) {
	rest := numval >> 4
	if rest > 0 {
		var chunks []byte
		for rest > 0 {
			chunks = append(chunks, byte(rest&0x7F))
			rest >>= 7
		}
		// chunks were collected least-significant-first; emit most
		// significant first.
		for i := len(chunks) - 1; i >= 0; i-- {
			buf.AppendByte(chunks[i])
		}
	}
	terminal := byte(0x80) | (byte(numval&0x0F) << 3) | (byte(tt) & 0x07)
	buf.AppendByte(terminal)
}

// AppendClose writes the single-byte Close token.
func AppendClose(buf *Charbuf) { buf.AppendByte(0x00) }

// AppendOpenDTag opens a numeric-tag-open element.
func AppendOpenDTag(buf *Charbuf, tag DTag) {
	AppendTokenHeader(buf, TTDTagOpen, uint64(tag))
}

// AppendBlob writes a standalone binary-blob token (header + raw bytes),
// not wrapped in a tag element.
func AppendBlob(buf *Charbuf, data []byte) {
	AppendTokenHeader(buf, TTBlob, uint64(len(data)))
	buf.Append(data)
}

// AppendUData writes a standalone UTF-8 text token.
func AppendUData(buf *Charbuf, text string) {
	AppendTokenHeader(buf, TTUData, uint64(len(text)))
	buf.Append([]byte(text))
}

// AppendTaggedBlob writes <tag>BLOB</tag>.
func AppendTaggedBlob(buf *Charbuf, tag DTag, data []byte) {
	AppendOpenDTag(buf, tag)
	AppendBlob(buf, data)
	AppendClose(buf)
}

// AppendTaggedUData writes <tag>TEXT</tag>.
func AppendTaggedUData(buf *Charbuf, tag DTag, text string) {
	AppendOpenDTag(buf, tag)
	AppendUData(buf, text)
	AppendClose(buf)
}

// AppendTaggedNonNegInt writes <tag>N</tag> using the decimal-UDATA
// convention for small integers.
func AppendTaggedNonNegInt(buf *Charbuf, tag DTag, n int64) {
	AppendOpenDTag(buf, tag)
	AppendUData(buf, itoa(n))
	AppendClose(buf)
}

// AppendTaggedTimestamp writes <tag>BLOB</tag> with a minimal big-endian
// encoding of a Timestamp.
func AppendTaggedTimestamp(buf *Charbuf, tag DTag, t Timestamp) {
	AppendTaggedBlob(buf, tag, minimalBigEndian(uint64(t)))
}

// AppendTaggedBinaryNumber writes <tag>BLOB</tag> with a minimal
// big-endian encoding of v.
func AppendTaggedBinaryNumber(buf *Charbuf, tag DTag, v uint64) {
	AppendTaggedBlob(buf, tag, minimalBigEndian(v))
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var tmp [20]byte
	i := len(tmp)
	for n > 0 {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		tmp[i] = '-'
	}
	return string(tmp[i:])
}
