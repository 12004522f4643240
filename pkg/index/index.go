// Package index builds the systematic index: a strictly nested
// title→chapter→section tree with article leaves, derived from the parsed
// document's element order.
package index

import (
	"regexp"
	"strings"

	"github.com/prototiposlegisla/regimento/pkg/model"
)

// Node is one entry of the systematic index. Interior nodes carry Title and
// Children; article leaves carry Label and Art.
type Node struct {
	Title     string  `json:"title,omitempty"`
	SectionID string  `json:"section_id,omitempty"`
	ArtRange  string  `json:"art_range,omitempty"`
	Children  []*Node `json:"children,omitempty"`

	Label string `json:"label,omitempty"`
	Art   string `json:"art,omitempty"`
}

// IsLeaf reports whether the node is an article leaf.
func (n *Node) IsLeaf() bool {
	return n.Art != ""
}

// Build walks the document in order and nests headings strictly:
// titles contain chapters, chapters contain sections, sections contain
// article leaves. Articles attach to the deepest open container. Law and
// appendix boundaries open a fresh top-level branch.
func Build(doc *model.Document) []*Node {
	var (
		root    []*Node
		title   *Node
		chapter *Node
		section *Node
	)

	for _, el := range doc.Elements {
		switch e := el.(type) {
		case *model.SectionHeading:
			text := e.Text
			if e.Subtitle != "" {
				text += " — " + e.Subtitle
			}
			node := &Node{Title: text, SectionID: e.SectionID}

			switch e.Kind {
			case model.KindTitle, model.KindLaw:
				title, chapter, section = node, nil, nil
				root = append(root, node)
			case model.KindChapter:
				chapter, section = node, nil
				if title != nil {
					title.Children = append(title.Children, node)
				} else {
					root = append(root, node)
				}
			case model.KindSection, model.KindSubsection:
				section = node
				switch {
				case chapter != nil:
					chapter.Children = append(chapter.Children, node)
				case title != nil:
					title.Children = append(title.Children, node)
				default:
					root = append(root, node)
				}
			}

		case *model.ArticleBlock:
			leaf := &Node{Label: articleLabel(e), Art: e.Number}
			target := section
			if target == nil {
				target = chapter
			}
			if target == nil {
				target = title
			}
			if target != nil {
				target.Children = append(target.Children, leaf)
			} else {
				root = append(root, leaf)
			}
		}
	}

	for _, n := range root {
		annotateRanges(n)
	}
	return root
}

// annotateRanges sets ArtRange on interior nodes to "first–last" of the
// article numbers in their subtree, in document order.
func annotateRanges(n *Node) (first, last string) {
	if n.IsLeaf() {
		return n.Art, n.Art
	}
	for _, c := range n.Children {
		f, l := annotateRanges(c)
		if f == "" {
			continue
		}
		if first == "" {
			first = f
		}
		last = l
	}
	if first != "" {
		if first == last {
			n.ArtRange = "Art. " + first
		} else {
			n.ArtRange = "Arts. " + first + "–" + last
		}
	}
	return first, last
}

var reCaputPrefix = regexp.MustCompile(
	`^Art\.\s*\d+[ºª°]?\s*[-–—]?\s*[A-H]?[ºª°.]?\s*[-–—.]\s*`)

const labelMaxLen = 60

// articleLabel builds the index label "Art. 43 — first words of the caput",
// truncated at a word boundary.
func articleLabel(art *model.ArticleBlock) string {
	prefix := "Art. " + art.Number
	if art.Caput == nil {
		return prefix
	}

	text := reCaputPrefix.ReplaceAllString(art.Caput.Text(), "")
	if len([]rune(text)) > labelMaxLen {
		runes := []rune(text)
		truncated := string(runes[:labelMaxLen-3])
		if cut := strings.LastIndex(truncated, " "); cut > labelMaxLen/2 {
			truncated = truncated[:cut]
		}
		text = truncated + "..."
	}
	if text == "" {
		return prefix
	}
	return prefix + " — " + text
}
