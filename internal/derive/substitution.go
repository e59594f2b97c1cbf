package derive

import (
	xsderrors "github.com/jacoelho/xsdcorpus/errors"
	"github.com/jacoelho/xsdcorpus/pkg/corpus"
)

// checkSubstitutions removes the affiliation of members whose chain is
// circular or whose type is not validly derived from the head's type.
func (d *deriver) checkSubstitutions() {
	for n := corpus.NodeID(1); int(n) < d.b.Len(); n++ {
		if d.b.Kind(n) != corpus.KindElement {
			continue
		}
		id := corpus.ElementID(n)
		rec := d.b.Element(id)
		if rec.SubstitutionHead == corpus.ElementID(corpus.Nil) {
			continue
		}
		name := d.b.String(rec.Name)
		if d.circularHead(id) {
			d.report(xsderrors.ErrSubstitutionCircular, rec.Location,
				"element %s: substitution group affiliation is circular", name)
			rec.SubstitutionHead = corpus.ElementID(corpus.Nil)
			continue
		}
		head := d.b.Element(rec.SubstitutionHead)
		if rec.Type == head.Type {
			continue
		}
		if !d.derivesFrom(rec.Type, head.Type) {
			d.report(xsderrors.ErrSubstitutionType, rec.Location,
				"element %s: type %s is not derived from the type of head %s",
				name, d.typeLabel(rec.Type), d.b.String(head.Name))
			rec.SubstitutionHead = corpus.ElementID(corpus.Nil)
			continue
		}
		if blocked := d.methods(rec.Type, head.Type) & head.Final; blocked != 0 {
			d.report(xsderrors.ErrSubstitutionType, rec.Location,
				"element %s: head %s is final for the derivation of type %s",
				name, d.b.String(head.Name), d.typeLabel(rec.Type))
			rec.SubstitutionHead = corpus.ElementID(corpus.Nil)
		}
	}
}

func (d *deriver) circularHead(id corpus.ElementID) bool {
	seen := map[corpus.ElementID]bool{id: true}
	for h := d.b.Element(id).SubstitutionHead; h != corpus.ElementID(corpus.Nil); h = d.b.Element(h).SubstitutionHead {
		if h == id {
			return true
		}
		if seen[h] {
			// a cycle further up is reported at its own members
			return false
		}
		seen[h] = true
	}
	return false
}

// methods collects the derivation methods on the base chain from t up to
// ancestor.
func (d *deriver) methods(t, ancestor corpus.TypeID) corpus.DerivationSet {
	var set corpus.DerivationSet
	seen := make(map[corpus.TypeID]bool)
	for t != ancestor && t != corpus.TypeID(corpus.Nil) && !seen[t] {
		seen[t] = true
		var method corpus.Derivation
		var base corpus.TypeID
		if d.b.IsComplexType(t) {
			rec := d.b.ComplexType(t)
			method, base = rec.Derivation, rec.Base
		} else {
			rec := d.b.SimpleType(t)
			method, base = rec.Derivation, rec.Base
		}
		switch method {
		case corpus.DerivationExtension:
			set |= corpus.BlockExtension
		case corpus.DerivationRestriction:
			set |= corpus.BlockRestriction
		case corpus.DerivationList:
			set |= corpus.BlockList
		case corpus.DerivationUnion:
			set |= corpus.BlockUnion
		}
		t = base
	}
	return set
}
