package ocr

import (
	"fmt"
	"image"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// ParseHOCR extracts word boxes from Tesseract's hOCR output. Words are the
// elements with class "ocrx_word"; their title carries
// "bbox x0 y0 x1 y1; x_wconf N". Words without text or a bbox are skipped.
func ParseHOCR(r io.Reader) ([]Word, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hOCR: %w", err)
	}

	var words []Word
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hasClass(n, "ocrx_word") {
			if w, ok := parseWord(n); ok {
				words = append(words, w)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return words, nil
}

func parseWord(n *html.Node) (Word, bool) {
	text := strings.TrimSpace(nodeText(n))
	if text == "" {
		return Word{}, false
	}

	box, conf, ok := parseTitle(attr(n, "title"))
	if !ok {
		return Word{}, false
	}

	return Word{Text: text, Box: box, Confidence: conf}, true
}

// parseTitle reads the bbox and x_wconf properties of an hOCR title
func parseTitle(title string) (image.Rectangle, float64, bool) {
	var box image.Rectangle
	var conf float64
	found := false

	for _, prop := range strings.Split(title, ";") {
		fields := strings.Fields(prop)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "bbox":
			if len(fields) != 5 {
				return image.Rectangle{}, 0, false
			}
			var coords [4]int
			for i := range coords {
				v, err := strconv.Atoi(fields[i+1])
				if err != nil {
					return image.Rectangle{}, 0, false
				}
				coords[i] = v
			}
			box = image.Rect(coords[0], coords[1], coords[2], coords[3])
			found = true
		case "x_wconf":
			if len(fields) == 2 {
				if v, err := strconv.ParseFloat(fields[1], 64); err == nil {
					conf = v
				}
			}
		}
	}

	return box, conf, found
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return sb.String()
}
