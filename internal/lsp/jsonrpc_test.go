package lsp

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestJSONRPCFramingMultipleMessages(t *testing.T) {
	var buf bytes.Buffer
	msg1 := []byte(`{"jsonrpc":"2.0","method":"initialized"}`)
	msg2 := []byte(`{"jsonrpc":"2.0","id":1,"method":"shutdown"}`)

	if err := writeMessage(&buf, msg1); err != nil {
		t.Fatalf("write message 1: %v", err)
	}
	if err := writeMessage(&buf, msg2); err != nil {
		t.Fatalf("write message 2: %v", err)
	}

	reader := bufio.NewReader(bytes.NewReader(buf.Bytes()))
	for i, want := range [][]byte{msg1, msg2} {
		got, err := readMessage(reader)
		if err != nil {
			t.Fatalf("read message %d: %v", i+1, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("message %d = %s", i+1, got)
		}
	}
}

func TestReadMessageHeaders(t *testing.T) {
	frame := "Content-Type: application/vscode-jsonrpc; charset=utf-8\r\ncontent-length: 2\r\n\r\n{}"
	got, err := readMessage(bufio.NewReader(strings.NewReader(frame)))
	if err != nil || string(got) != "{}" {
		t.Fatalf("got %q, err %v", got, err)
	}

	_, err = readMessage(bufio.NewReader(strings.NewReader("X-Other: 1\r\n\r\n{}")))
	if !errors.Is(err, errMissingContentLength) {
		t.Fatalf("err = %v, want missing Content-Length", err)
	}

	if _, err := readMessage(bufio.NewReader(strings.NewReader("Content-Length: abc\r\n\r\n"))); err == nil {
		t.Fatalf("expected error for a bad length")
	}
}
