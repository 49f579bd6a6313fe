package lsp

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strconv"
)

// maxMessageSize bounds a single payload; template buffers are far smaller.
const maxMessageSize = 64 << 20

var errNoContentLength = errors.New("missing Content-Length header")

// readMessage reads one base-protocol frame: MIME-style headers, a blank
// line, then Content-Length bytes of JSON. Other headers are ignored.
// A clean end of input before any header yields io.EOF.
func readMessage(r *bufio.Reader) ([]byte, error) {
	header, err := textproto.NewReader(r).ReadMIMEHeader()
	if err != nil {
		return nil, err
	}
	raw := header.Get("Content-Length")
	if raw == "" {
		return nil, errNoContentLength
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("invalid Content-Length %q", raw)
	}
	if n > maxMessageSize {
		return nil, fmt.Errorf("message too large: %d bytes", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, fmt.Errorf("read %d byte payload: %w", n, err)
	}
	return payload, nil
}

func writeMessage(w io.Writer, payload []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(payload)); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}
