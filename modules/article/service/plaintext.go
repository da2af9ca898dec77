package service

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// plainText returns the text nodes of an HTML fragment with entities
// decoded. Script and style bodies are not text and are skipped.
func plainText(content string) (string, error) {
	var (
		out  bytes.Buffer
		skip int
	)
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return out.String(), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			if isRawText(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawText(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				out.Write(z.Text())
			}
		}
	}
}

func isRawText(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	return string(name) == "script" || string(name) == "style"
}
