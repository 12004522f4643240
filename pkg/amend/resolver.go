// Package amend resolves amendment history inside article blocks: repeated
// redactions of the same provision are collapsed into a current version plus
// flagged historical versions.
package amend

import "github.com/prototiposlegisla/regimento/pkg/model"

// Resolve processes every article block of the document in place and
// returns the same document. The transform is idempotent, so it can run
// again over an already-resolved document without changing it.
func Resolve(doc *model.Document) *model.Document {
	for _, el := range doc.Elements {
		if art, ok := el.(*model.ArticleBlock); ok {
			resolveArticle(art)
		}
	}
	return doc
}

// resolveArticle collapses locally repeated identifiers into versions.
//
// Children are partitioned into maximal runs of consecutive entries sharing
// the same identifier label; within a run, every entry except the last is
// marked historical in place. The list is never reordered or pruned, so
// document order survives for downstream consumers. Non-consecutive repeats
// of the same label are distinct siblings, not versions.
func resolveArticle(art *model.ArticleBlock) {
	i := 0
	for i < len(art.Children) {
		j := i
		for j+1 < len(art.Children) &&
			art.Children[j+1].Identifier == art.Children[i].Identifier {
			j++
		}
		for k := i; k < j; k++ {
			art.Children[k].Historical = true
		}
		i = j + 1
	}

	// When the builder's merge step left the current caput flagged
	// historical, a later restatement in the superseded list may hold
	// the in-force text: swap it back.
	if art.Caput != nil && art.Caput.Historical {
		for idx, v := range art.Superseded {
			if v.Identifier == art.Caput.Identifier && !v.Historical {
				art.Superseded[idx] = art.Caput
				art.Caput = v
				break
			}
		}
	}

	// A caput-level revocation is overridden while any live sub-provision
	// remains in force.
	if art.Caput != nil && art.Caput.Revoked {
		live := false
		for _, c := range art.Children {
			if !c.Historical && !c.Revoked {
				live = true
				break
			}
		}
		art.Revoked = !live
	}
}
