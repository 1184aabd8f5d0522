package overlay

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"

	"github.com/quadrat/formscribe/pkg/formstruct"
)

// ParseReport recovers the overlay boxes from a generated HTML report, for
// tools that only kept the report. It reads the data attributes of each box
// row, so cosmetic changes to the report markup do not break it.
func ParseReport(data []byte) ([]Box, error) {
	// Figure out the character encoding
	content := string(data)
	encoding := "utf-8"
	if idx := strings.Index(content, "charset="); idx >= 0 {
		snippet := content[idx+len("charset="):]
		fields := strings.FieldsFunc(snippet, func(r rune) bool {
			return r == '"' || r == ';' || r == '\'' || r == '>'
		})
		if len(fields) > 0 && fields[0] != "" {
			encoding = strings.ToLower(fields[0])
		}
	}

	decoded := data
	if encoding != "utf-8" {
		var err error
		decoded, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", encoding, err)
		}
	}

	doc, err := html.Parse(strings.NewReader(string(decoded)))
	if err != nil {
		return nil, err
	}

	var boxes []Box
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" && hasClass(n, "box") {
			boxes = append(boxes, boxFromNode(n))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if len(boxes) == 0 {
		return nil, fmt.Errorf("no box rows found in report")
	}
	return boxes, nil
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(a.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func boxFromNode(n *html.Node) Box {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[a.Key] = a.Val
	}

	parseFloat := func(key string) float64 {
		v, _ := strconv.ParseFloat(attrs[key], 64)
		return v
	}

	return Box{
		GroupID: attrs["data-group-id"],
		Key:     attrs["data-key"],
		Value:   attrs["data-value"],
		BBox: formstruct.BBox{
			X: parseFloat("data-x"),
			Y: parseFloat("data-y"),
			W: parseFloat("data-w"),
			H: parseFloat("data-h"),
		},
		Confidence: parseFloat("data-confidence"),
		Doubt:      attrs["data-doubt"] == "true",
	}
}
