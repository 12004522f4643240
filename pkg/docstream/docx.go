package docstream

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/prototiposlegisla/regimento/pkg/model"
)

// ErrContainerBusy indicates the document container could not be opened
// because another application holds it locked. Common enough when the file
// is still open in a word processor to warrant its own message.
var ErrContainerBusy = errors.New("document is locked by another application")

const hyperlinkRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"

// Source is the materialized paragraph stream and footnote store extracted
// from one WordprocessingML container.
type Source struct {
	Paragraphs []Paragraph
	Footnotes  MapStore
}

// Open reads a .docx container and extracts the ordered paragraph stream
// and the footnote store. includePrivate controls whether footnotes with
// the private prefix are retained or excluded.
func Open(path string, includePrivate bool) (*Source, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if isBusy(err) {
			return nil, fmt.Errorf("opening %s: %w", path, ErrContainerBusy)
		}
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer zr.Close()
	return Read(&zr.Reader, includePrivate)
}

// Read extracts the paragraph stream from an already-open container.
func Read(zr *zip.Reader, includePrivate bool) (*Source, error) {
	rels, err := readRels(zr)
	if err != nil {
		return nil, err
	}

	footnotes, err := readFootnotes(zr, includePrivate)
	if err != nil {
		return nil, err
	}

	paragraphs, err := readDocument(zr, rels)
	if err != nil {
		return nil, err
	}

	return &Source{Paragraphs: paragraphs, Footnotes: footnotes}, nil
}

func isBusy(err error) bool {
	if errors.Is(err, fs.ErrPermission) {
		return true
	}
	// Windows sharing violations surface only as a message.
	return strings.Contains(err.Error(), "being used by another process")
}

func openPart(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if f.Name == name {
			return f.Open()
		}
	}
	return nil, fs.ErrNotExist
}

// --- WordprocessingML structures ---
// Minimal structs for the elements needed from the wordprocessingml schema.
// encoding/xml matches by local name, which is sufficient here.

type xmlRelationships struct {
	Relationships []xmlRelationship `xml:"Relationship"`
}

type xmlRelationship struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}

type xmlRunProps struct {
	Bold   *struct{} `xml:"b"`
	Italic *struct{} `xml:"i"`
	Strike *struct{} `xml:"strike"`
}

type xmlText struct {
	Value string `xml:",chardata"`
}

type xmlRun struct {
	Props       *xmlRunProps `xml:"rPr"`
	Texts       []xmlText    `xml:"t"`
	Tabs        []struct{}   `xml:"tab"`
	Breaks      []struct{}   `xml:"br"`
	FootnoteRef *struct {
		ID string `xml:"id,attr"`
	} `xml:"footnoteReference"`
	// footnoteRef is the superscript marker run inside footnotes.xml.
	RefMark *struct{} `xml:"footnoteRef"`
}

type xmlHyperlink struct {
	RID    string   `xml:"id,attr"`
	Anchor string   `xml:"anchor,attr"`
	Runs   []xmlRun `xml:"r"`
}

type xmlParaProps struct {
	Justify *struct {
		Val string `xml:"val,attr"`
	} `xml:"jc"`
	Indent *struct {
		Left string `xml:"left,attr"`
	} `xml:"ind"`
}

type xmlFootnotePara struct {
	Props *xmlParaProps `xml:"pPr"`
	Runs  []xmlRun      `xml:"r"`
}

type xmlFootnote struct {
	ID    string            `xml:"id,attr"`
	Type  string            `xml:"type,attr"`
	Paras []xmlFootnotePara `xml:"p"`
}

type xmlFootnotes struct {
	Footnotes []xmlFootnote `xml:"footnote"`
}

// --- Part readers ---

// readRels parses word/_rels/document.xml.rels into {rId: url} for
// hyperlink relationships. A missing part is not an error.
func readRels(zr *zip.Reader) (map[string]string, error) {
	rels := make(map[string]string)
	rc, err := openPart(zr, "word/_rels/document.xml.rels")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return rels, nil
		}
		return nil, fmt.Errorf("opening document rels: %w", err)
	}
	defer rc.Close()

	var parsed xmlRelationships
	if err := xml.NewDecoder(rc).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing document rels: %w", err)
	}
	for _, rel := range parsed.Relationships {
		if rel.Type == hyperlinkRelType {
			rels[rel.ID] = rel.Target
		}
	}
	return rels, nil
}

// readFootnotes parses word/footnotes.xml and applies the private/summary
// prefix conventions. A missing part yields an empty store.
func readFootnotes(zr *zip.Reader, includePrivate bool) (MapStore, error) {
	store := make(MapStore)
	rc, err := openPart(zr, "word/footnotes.xml")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("opening footnotes part: %w", err)
	}
	defer rc.Close()

	var parsed xmlFootnotes
	if err := xml.NewDecoder(rc).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("parsing footnotes part: %w", err)
	}

	for _, fn := range parsed.Footnotes {
		// Skip the built-in separator footnotes.
		if fn.Type == "separator" || fn.Type == "continuationSeparator" {
			continue
		}
		id, err := strconv.Atoi(fn.ID)
		if err != nil {
			continue
		}

		var paras []model.FootnotePara
		for _, p := range fn.Paras {
			var runs []model.Run
			for _, r := range p.Runs {
				if r.RefMark != nil {
					continue
				}
				tr := convertRun(r)
				if tr.Text != "" {
					runs = append(runs, tr)
				}
			}
			indent := p.Props != nil && p.Props.Indent != nil &&
				p.Props.Indent.Left != "" && p.Props.Indent.Left != "0"
			paras = append(paras, model.FootnotePara{Runs: runs, Indent: indent})
		}

		rec := Classify(paras, includePrivate)
		if rec.Disposition == Exclude {
			continue
		}
		store[id] = rec
	}
	return store, nil
}

// readDocument parses word/document.xml into the ordered paragraph stream.
// The paragraph body is walked token by token because run order across
// plain runs and hyperlink-wrapped runs must be preserved.
func readDocument(zr *zip.Reader, rels map[string]string) ([]Paragraph, error) {
	rc, err := openPart(zr, "word/document.xml")
	if err != nil {
		return nil, fmt.Errorf("opening document part: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var paragraphs []Paragraph
	inBody := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing document part: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "body":
				inBody = true
			case "p":
				if !inBody {
					continue
				}
				para, err := readParagraph(dec, rels)
				if err != nil {
					return nil, fmt.Errorf("parsing paragraph %d: %w", len(paragraphs), err)
				}
				paragraphs = append(paragraphs, para)
			}
		case xml.EndElement:
			if t.Name.Local == "body" {
				inBody = false
			}
		}
	}
	return paragraphs, nil
}

// readParagraph consumes one <w:p> element, the start tag already read.
func readParagraph(dec *xml.Decoder, rels map[string]string) (Paragraph, error) {
	var (
		runs        []model.Run
		footnoteIDs []int
		centered    bool
		indentLeft  int
		bookmark    string
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			return Paragraph{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				var props xmlParaProps
				if err := dec.DecodeElement(&props, &t); err != nil {
					return Paragraph{}, err
				}
				if props.Justify != nil && props.Justify.Val == "center" {
					centered = true
				}
				if props.Indent != nil {
					if n, err := strconv.Atoi(props.Indent.Left); err == nil {
						indentLeft = n
					}
				}
			case "bookmarkStart":
				if bookmark == "" {
					for _, a := range t.Attr {
						if a.Name.Local == "name" {
							bookmark = a.Value
						}
					}
				}
				if err := dec.Skip(); err != nil {
					return Paragraph{}, err
				}
			case "r":
				var r xmlRun
				if err := dec.DecodeElement(&r, &t); err != nil {
					return Paragraph{}, err
				}
				if r.FootnoteRef != nil {
					if id, err := strconv.Atoi(r.FootnoteRef.ID); err == nil {
						footnoteIDs = append(footnoteIDs, id)
					}
				}
				if tr := convertRun(r); tr.Text != "" {
					runs = append(runs, tr)
				}
			case "hyperlink":
				var h xmlHyperlink
				if err := dec.DecodeElement(&h, &t); err != nil {
					return Paragraph{}, err
				}
				url := rels[h.RID]
				for _, r := range h.Runs {
					tr := convertRun(r)
					if tr.Text == "" {
						continue
					}
					tr.URL = url
					tr.Anchor = h.Anchor
					runs = append(runs, tr)
				}
			default:
				if err := dec.Skip(); err != nil {
					return Paragraph{}, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "p" {
				return Paragraph{
					Text:        fullText(runs),
					Runs:        runs,
					Centered:    centered,
					Struck:      majorityStruck(runs),
					IndentLeft:  indentLeft,
					Bookmark:    bookmark,
					FootnoteIDs: footnoteIDs,
				}, nil
			}
		}
	}
}

func convertRun(r xmlRun) model.Run {
	var b strings.Builder
	for _, t := range r.Texts {
		b.WriteString(t.Value)
	}
	for range r.Tabs {
		b.WriteString("\t")
	}
	for range r.Breaks {
		b.WriteString("\n")
	}
	out := model.Run{Text: b.String()}
	if r.Props != nil {
		out.Bold = r.Props.Bold != nil
		out.Italic = r.Props.Italic != nil
		out.Strike = r.Props.Strike != nil
	}
	return out
}

func fullText(runs []model.Run) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return strings.TrimSpace(b.String())
}

// majorityStruck reports whether more than half of the non-whitespace
// characters across all runs are struck through.
func majorityStruck(runs []model.Run) bool {
	var struck, total int
	for _, r := range runs {
		n := utf8.RuneCountInString(strings.TrimSpace(r.Text))
		total += n
		if r.Strike {
			struck += n
		}
	}
	return total > 0 && struck*2 > total
}
