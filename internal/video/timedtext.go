package video

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// json3 is YouTube's JSON timed-text format.
type json3 struct {
	Events []struct {
		Segs []struct {
			UTF8 any `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseTimedText extracts the spoken text from a json3 or XML timed-text
// payload, joining chunks with single spaces. Unrecognised or malformed
// payloads yield "".
func ParseTimedText(payload []byte) string {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return ""
	}
	switch trimmed[0] {
	case '{':
		return parseJSON3(trimmed)
	case '<':
		return parseXMLTimedText(trimmed)
	default:
		return ""
	}
}

func parseJSON3(data []byte) string {
	var doc json3
	if err := json.Unmarshal(data, &doc); err != nil {
		return ""
	}
	var chunks []string
	for _, ev := range doc.Events {
		for _, seg := range ev.Segs {
			if s, ok := seg.UTF8.(string); ok && s != "" {
				chunks = append(chunks, s)
			}
		}
	}
	return collapseSpace(strings.Join(chunks, " "))
}

// parseXMLTimedText collects the character data of every <text> element.
func parseXMLTimedText(data []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false

	var chunks []string
	var current strings.Builder
	depth := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ""
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "text" {
				if depth == 0 {
					current.Reset()
				}
				depth++
			}
		case xml.EndElement:
			if t.Name.Local == "text" && depth > 0 {
				depth--
				if depth == 0 && current.Len() > 0 {
					chunks = append(chunks, current.String())
				}
			}
		case xml.CharData:
			if depth > 0 {
				current.Write(t)
			}
		}
	}
	return collapseSpace(strings.Join(chunks, " "))
}

// collapseSpace replaces runs of whitespace with one space and trims.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
