package email

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Attachment is a file attached to a Message.
// Filename, ContentType and Encoding are metadata passed through to providers
// and to failed-delivery records.
type Attachment struct {
	Filename    string
	ContentType string
	Encoding    string
	Source      AttachmentSource
}

// AttachmentSource is where the attachment payload comes from.
// It is a closed set: PathSource, InlineSource and UnsupportedSource.
type AttachmentSource interface {
	attachmentSource()
}

// PathSource reads the payload from a file on the local filesystem.
type PathSource struct {
	Path string
}

// InlineSource carries the payload in memory. With an empty Encoding, Data is
// used as raw bytes; otherwise Data is text in the named encoding.
type InlineSource struct {
	Data     []byte
	Encoding string
}

// UnsupportedSource marks a payload representation that cannot be resolved to bytes,
// e.g. a URL-like reference without a local path. Consumers skip it.
type UnsupportedSource struct {
	Kind string
}

func (PathSource) attachmentSource()        {}
func (InlineSource) attachmentSource()      {}
func (UnsupportedSource) attachmentSource() {}

// NewFileAttachment attaches the file at path.
func NewFileAttachment(filename, path, contentType string) Attachment {
	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Source:      PathSource{Path: path},
	}
}

// NewBytesAttachment attaches raw bytes.
func NewBytesAttachment(filename string, data []byte, contentType string) Attachment {
	return Attachment{
		Filename:    filename,
		ContentType: contentType,
		Source:      InlineSource{Data: data},
	}
}

// NewTextAttachment attaches text in the given encoding (utf8 when empty),
// e.g. base64 encoded payloads received from an API.
func NewTextAttachment(filename, text, enc string) Attachment {
	if enc == "" {
		enc = "utf8"
	}
	return Attachment{
		Filename: filename,
		Encoding: enc,
		Source:   InlineSource{Data: []byte(text), Encoding: enc},
	}
}

// Bytes resolves the attachment payload.
func (a Attachment) Bytes() ([]byte, error) {
	switch src := a.Source.(type) {
	case PathSource:
		if src.Path == "" {
			return nil, fmt.Errorf("%w: empty path", ErrUnsupportedSource)
		}
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %s: %w", src.Path, err)
		}
		return data, nil
	case InlineSource:
		return src.Decode()
	case UnsupportedSource:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, src.Kind)
	default:
		return nil, fmt.Errorf("%w: attachment has neither path nor content", ErrUnsupportedSource)
	}
}

// Decode converts the inline payload to raw bytes.
func (s InlineSource) Decode() ([]byte, error) {
	switch strings.ToLower(s.Encoding) {
	case "":
		return s.Data, nil
	case "utf8", "utf-8":
		return s.Data, nil
	case "ascii", "latin1", "binary":
		return encodeText(charmap.ISO8859_1.NewEncoder(), s.Data)
	case "utf16le", "utf-16le", "ucs2", "ucs-2":
		return encodeText(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder(), s.Data)
	case "base64", "base64url":
		return decodeBase64(string(s.Data))
	case "hex":
		data, err := hex.DecodeString(strings.TrimSpace(string(s.Data)))
		if err != nil {
			return nil, fmt.Errorf("invalid hex attachment content: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, s.Encoding)
	}
}

func encodeText(enc *encoding.Encoder, text []byte) ([]byte, error) {
	data, err := encoding.ReplaceUnsupported(enc).Bytes(text)
	if err != nil {
		return nil, fmt.Errorf("failed to encode attachment content: %w", err)
	}
	return data, nil
}

// decodeBase64 accepts both standard and URL alphabets, with or without padding,
// and ignores embedded line breaks (MIME style wrapping).
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', ' ', '\t':
			return -1
		}
		return r
	}, s)
	s = strings.TrimRight(s, "=")

	if data, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 attachment content: %w", err)
	}
	return data, nil
}
