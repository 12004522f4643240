// Package build assembles a classified paragraph stream into an ordered
// parsed document: section headings and article blocks with hierarchical
// stable ids, merged article restatements, and attached footnotes.
package build

import (
	"fmt"
	"strings"

	"github.com/prototiposlegisla/regimento/pkg/classify"
	"github.com/prototiposlegisla/regimento/pkg/docstream"
	"github.com/prototiposlegisla/regimento/pkg/model"
)

// Builder turns the paragraph stream into a model.Document in one stateful
// pass. It is not safe for concurrent use; create one Builder per document.
type Builder struct {
	classifier *classify.Classifier
	conv       *classify.Conventions

	// OnOrphan, when set, observes sub-provisions encountered with no
	// open article block. The paragraph is dropped either way; the hook
	// exists so callers can surface what may be an upstream structural
	// defect without changing acceptance behavior.
	OnOrphan func(p docstream.Paragraph)
}

// NewBuilder creates a Builder. A nil classifier uses the default
// conventions.
func NewBuilder(classifier *classify.Classifier) *Builder {
	if classifier == nil {
		classifier = classify.New(nil)
	}
	return &Builder{classifier: classifier, conv: classifier.Conventions()}
}

// context is the state carried across the single pass. Counters are
// explicit here rather than package state so two builds never interfere.
type context struct {
	doc *model.Document

	lawName   string
	lawPrefix string
	// defaultLawSet records that the first law marker has been seen;
	// that marker designates the default law instead of opening a new
	// section.
	defaultLawSet bool
	inTransitory  bool

	article *model.ArticleBlock

	// slots is the 4-slot hierarchical addressing context:
	// paragraph, inciso, alínea, sub-alínea.
	slots [4]string
	// seenUIDs detects stable-id collisions; ids are law-scoped because
	// the law prefix participates in every id.
	seenUIDs map[string]bool

	publicN  int // document-wide footnote counter
	privateN int // resets at the start of each new article block

	titleN, chapterN, sectionN, subsectionN, lawN int
}

// Build consumes the paragraph stream and returns the assembled document.
// The footnote store may be nil when the stream carries no footnotes.
func (b *Builder) Build(paragraphs []docstream.Paragraph, store docstream.FootnoteStore) *model.Document {
	ctx := &context{
		doc:      &model.Document{},
		seenUIDs: make(map[string]bool),
	}

	classified := make([]classify.Result, len(paragraphs))
	for i, p := range paragraphs {
		classified[i] = b.classifier.Classify(p)
	}

	for i := 0; i < len(paragraphs); i++ {
		p := paragraphs[i]
		res := classified[i]
		text := strings.TrimSpace(p.Text)

		if res.Kind == model.KindEmpty {
			continue
		}

		// Law and appendix markers are recognized on centered text
		// independent of the general heading patterns.
		if p.Centered {
			if name, prefix, ok := b.conv.LawMarker(text); ok {
				b.lawMarker(ctx, name, prefix)
				continue
			}
			if marker, ok := b.conv.TransitoryMarker(text); ok {
				b.transitoryMarker(ctx, marker)
				continue
			}
		}

		if res.Kind.IsHeading() {
			// A heading may absorb an immediately following bare
			// subtitle paragraph.
			subtitleNext := ""
			if i+1 < len(paragraphs) && classified[i+1].Kind == model.KindSubtitle {
				subtitleNext = strings.TrimSpace(paragraphs[i+1].Text)
			}
			if b.heading(ctx, res.Kind, text, subtitleNext) {
				i++
			}
			continue
		}

		if res.Kind == model.KindArticle {
			b.article(ctx, p, res, store)
			continue
		}

		if res.Kind.IsSubProvision() {
			b.subProvision(ctx, p, res, text, store)
			continue
		}
	}

	ctx.flushArticle()
	return ctx.doc
}

// BuildSource is a convenience for streams extracted by docstream.Open.
func (b *Builder) BuildSource(src *docstream.Source) *model.Document {
	return b.Build(src.Paragraphs, src.Footnotes)
}

func (ctx *context) flushArticle() {
	if ctx.article != nil {
		ctx.doc.Elements = append(ctx.doc.Elements, ctx.article)
		ctx.article = nil
	}
}

// lawMarker switches the law context. The very first marker designates the
// default law (empty prefix) and emits no heading; later markers open a new
// law section.
func (b *Builder) lawMarker(ctx *context, name, prefix string) {
	ctx.flushArticle()
	ctx.inTransitory = false // the appendix is per-law, not global
	ctx.lawN++
	ctx.lawName = name

	if !ctx.defaultLawSet {
		ctx.defaultLawSet = true
		ctx.lawPrefix = ""
		return
	}

	if prefix == "" {
		prefix = fmt.Sprintf("L%d", ctx.lawN)
	}
	ctx.lawPrefix = prefix
	ctx.doc.Elements = append(ctx.doc.Elements, &model.SectionHeading{
		Kind:      model.KindLaw,
		Text:      name,
		SectionID: fmt.Sprintf("norma%d", ctx.lawN),
	})
}

func (b *Builder) transitoryMarker(ctx *context, marker classify.TransitoryMarker) {
	ctx.flushArticle()
	ctx.inTransitory = true
	ctx.doc.Elements = append(ctx.doc.Elements, &model.SectionHeading{
		Kind:      model.KindLaw,
		Text:      marker.Label,
		SectionID: marker.SectionID,
	})
}

// heading emits a section heading. Returns true when the following subtitle
// paragraph was absorbed and must be skipped by the caller.
func (b *Builder) heading(ctx *context, kind model.UnitKind, text, subtitleNext string) bool {
	ctx.flushArticle()

	// A chapter or section heading may already contain its subtitle on a
	// second text line.
	headText := text
	subtitle := ""
	if kind == model.KindChapter || kind == model.KindSection {
		if lines := strings.SplitN(text, "\n", 2); len(lines) == 2 {
			headText = strings.TrimSpace(lines[0])
			subtitle = strings.TrimSpace(lines[1])
		}
	}

	absorbed := false
	if subtitle == "" && subtitleNext != "" && kind != model.KindSubtitle {
		subtitle = subtitleNext
		absorbed = true
	}

	var sectionID string
	switch kind {
	case model.KindTitle:
		ctx.titleN++
		sectionID = fmt.Sprintf("tit%d", ctx.titleN)
	case model.KindChapter:
		ctx.chapterN++
		sectionID = fmt.Sprintf("cap%d", ctx.chapterN)
	case model.KindSection:
		ctx.sectionN++
		sectionID = fmt.Sprintf("sec%d", ctx.sectionN)
	case model.KindSubsection:
		ctx.subsectionN++
		sectionID = fmt.Sprintf("subsec%d", ctx.subsectionN)
	case model.KindSubtitle:
		// A standalone subtitle that no heading consumed is promoted
		// to an implicit section.
		kind = model.KindSection
		ctx.sectionN++
		sectionID = fmt.Sprintf("sec%d", ctx.sectionN)
		subtitle = ""
	}

	ctx.doc.Elements = append(ctx.doc.Elements, &model.SectionHeading{
		Kind:      kind,
		Text:      headText,
		Subtitle:  subtitle,
		SectionID: sectionID,
	})
	return absorbed
}

// article opens a new article block or, when the number repeats the block
// still in progress, merges a full-article restatement into it.
func (b *Builder) article(ctx *context, p docstream.Paragraph, res classify.Result, store docstream.FootnoteStore) {
	effective := res.ArticleNumber
	if ctx.inTransitory {
		effective = "ADT" + effective
	}
	uidPrefix := ctx.lawPrefix + "art" + effective

	restatement := ctx.article != nil && ctx.article.Number == effective
	if !restatement {
		ctx.flushArticle()
		ctx.privateN = 0
	}

	caput := &model.Unit{
		Kind:          model.KindArticle,
		Identifier:    res.Identifier,
		UID:           uidPrefix,
		Runs:          p.Runs,
		Revoked:       b.conv.IsRevocation(p.Text),
		Historical:    p.Struck,
		AmendmentNote: b.conv.AmendmentNote(p.Text),
		Footnotes:     ctx.buildFootnotes(p.FootnoteIDs, store),
	}

	if restatement {
		prev := ctx.article
		if prev.Caput != nil {
			prev.Caput.Historical = true
			prev.Superseded = append(prev.Superseded, prev.Caput)
		}
		for _, child := range prev.Children {
			child.Historical = true
			prev.Superseded = append(prev.Superseded, child)
		}
		prev.Children = nil
		prev.Caput = caput
		if s := summaryFor(p.FootnoteIDs, store); s != "" {
			prev.Summary = s
		}
	} else {
		ctx.article = &model.ArticleBlock{
			Number:     effective,
			Transitory: ctx.inTransitory,
			Caput:      caput,
			Summary:    summaryFor(p.FootnoteIDs, store),
			LawName:    ctx.lawName,
			LawPrefix:  ctx.lawPrefix,
		}
	}

	// Starting or restarting an article resets the addressing context.
	ctx.slots = [4]string{}
	ctx.seenUIDs[uidPrefix] = true
}

// subProvision appends a unit to the open article block in document order.
// With no open block the paragraph is dropped: documented lenient policy,
// observable through OnOrphan.
func (b *Builder) subProvision(ctx *context, p docstream.Paragraph, res classify.Result, text string, store docstream.FootnoteStore) {
	if ctx.article == nil {
		if b.OnOrphan != nil {
			b.OnOrphan(p)
		}
		return
	}

	uidPrefix := ctx.lawPrefix + "art" + ctx.article.Number
	uid := ctx.hierarchicalUID(uidPrefix, res.Kind, res.Identifier)

	// Identical addressing repeated inside one article (source
	// irregularities) is resolved by deterministic suffixing, never by
	// dropping data.
	base := uid
	for n := 2; ctx.seenUIDs[uid]; n++ {
		uid = fmt.Sprintf("%s_%d", base, n)
	}
	ctx.seenUIDs[uid] = true

	unit := &model.Unit{
		Kind:          res.Kind,
		Identifier:    res.Identifier,
		UID:           uid,
		Runs:          p.Runs,
		Revoked:       b.conv.IsRevocation(text),
		Historical:    p.Struck,
		AmendmentNote: b.conv.AmendmentNote(text),
		Footnotes:     ctx.buildFootnotes(p.FootnoteIDs, store),
	}
	ctx.article.Children = append(ctx.article.Children, unit)
}

// hierarchicalUID composes the stable id from the article prefix and the
// non-empty addressing slots, updating the slots for the unit's level:
// a paragraph occupies slot 1 and clears 2-4, an inciso occupies slot 2
// and clears 3-4, an alínea occupies slot 3 and clears 4, a sub-alínea
// occupies slot 4. A plain numbered item appends to the current slots
// without resetting any, because such items can occur at any depth.
func (ctx *context) hierarchicalUID(prefix string, kind model.UnitKind, identifier string) string {
	suffix := uidToken(kind, identifier)

	switch kind {
	case model.KindSoleParagraph, model.KindParagraph:
		ctx.slots[0] = suffix
		ctx.slots[1], ctx.slots[2], ctx.slots[3] = "", "", ""
	case model.KindInciso:
		ctx.slots[1] = suffix
		ctx.slots[2], ctx.slots[3] = "", ""
	case model.KindAlinea:
		ctx.slots[2] = suffix
		ctx.slots[3] = ""
	case model.KindSubAlinea:
		ctx.slots[3] = suffix
	case model.KindItem:
		return prefix + ctx.slots[0] + ctx.slots[1] + ctx.slots[2] + ctx.slots[3] + suffix
	default:
		return prefix + suffix
	}

	return prefix + ctx.slots[0] + ctx.slots[1] + ctx.slots[2] + ctx.slots[3]
}

// uidToken derives the slot token from the normalized identifier label.
func uidToken(kind model.UnitKind, identifier string) string {
	switch kind {
	case model.KindSoleParagraph:
		return "pu"
	case model.KindParagraph:
		return "p" + leadingDigits(strings.TrimPrefix(identifier, "§ "))
	case model.KindInciso:
		return identifier
	case model.KindAlinea:
		if identifier != "" {
			return identifier[:1]
		}
		return ""
	case model.KindSubAlinea:
		return "sub" + leadingDigits(identifier)
	case model.KindItem:
		return "item" + leadingDigits(identifier)
	}
	return ""
}

func leadingDigits(s string) string {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return "0"
	}
	return s[:i]
}

// buildFootnotes resolves the paragraph's footnote references against the
// store and numbers them: public notes from the document-wide counter,
// private notes from the per-article counter.
func (ctx *context) buildFootnotes(ids []int, store docstream.FootnoteStore) []model.Footnote {
	if store == nil {
		return nil
	}
	var out []model.Footnote
	for _, id := range ids {
		rec, ok := store.Resolve(id)
		if !ok || rec.Disposition != docstream.Keep {
			continue
		}
		var num int
		if rec.Private {
			ctx.privateN++
			num = ctx.privateN
		} else {
			ctx.publicN++
			num = ctx.publicN
		}
		out = append(out, model.Footnote{
			Number:     num,
			Paragraphs: rec.Paragraphs,
			Private:    rec.Private,
		})
	}
	return out
}

// summaryFor returns the summary text of the first summary-disposition
// footnote referenced by the paragraph.
func summaryFor(ids []int, store docstream.FootnoteStore) string {
	if store == nil {
		return ""
	}
	for _, id := range ids {
		if rec, ok := store.Resolve(id); ok && rec.Disposition == docstream.Summarize {
			return rec.Summary
		}
	}
	return ""
}
