package usersig

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"io"
	"strings"
)

// The signature alphabet swaps the base64 characters that are unsafe in URLs.
var (
	urlEncoder = strings.NewReplacer("+", "*", "/", "-", "=", "_")
	urlDecoder = strings.NewReplacer("*", "+", "-", "/", "_", "=")
)

func encodeToken(doc []byte) (string, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(doc); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return urlEncoder.Replace(base64.StdEncoding.EncodeToString(buf.Bytes())), nil
}

func decodeToken(token string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(urlDecoder.Replace(token))
	if err != nil {
		return nil, err
	}
	r, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	// Inflated size is capped.
	return io.ReadAll(io.LimitReader(r, maxDocumentSize))
}

const maxDocumentSize = 64 << 10
