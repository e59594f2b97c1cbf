package corpus

import (
	"errors"
	"fmt"
)

type nameKey struct {
	ns    StringID
	local StringID
}

// checkInvariants verifies the structural node invariants. A failure means a
// compiler pass produced an inconsistent arena, never a schema problem.
func (b *Builder) checkInvariants() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}
	kind := func(id NodeID) Kind { return b.Kind(id) }
	isType := func(id TypeID) bool {
		k := kind(id.Node())
		return k == KindSimpleType || k == KindComplexType
	}
	nsURI := func(id NamespaceID) StringID {
		if kind(id.Node()) != KindNamespace {
			return 0
		}
		return b.namespaces[b.nodes[id].slot].URI
	}

	for id := NodeID(1); int(id) < len(b.nodes); id++ {
		ref := b.nodes[id]
		switch ref.kind {
		case KindElement:
			e := b.elements[ref.slot]
			if kind(e.Namespace.Node()) != KindNamespace {
				fail("element %d: namespace %d is not a namespace", id, e.Namespace)
			}
			if e.Type != TypeID(Nil) && !isType(e.Type) {
				fail("element %d: type %d is not a type", id, e.Type)
			}
			if e.SubstitutionHead != ElementID(Nil) && kind(e.SubstitutionHead.Node()) != KindElement {
				fail("element %d: substitution head %d is not an element", id, e.SubstitutionHead)
			}
		case KindAttribute:
			a := b.attributes[ref.slot]
			if a.Type != TypeID(Nil) && kind(a.Type.Node()) != KindSimpleType {
				fail("attribute %d: type %d is not a simple type", id, a.Type)
			}
		case KindAttributeUse:
			u := b.attributeUses[ref.slot]
			if kind(u.Attribute.Node()) != KindAttribute {
				fail("attribute use %d: attribute %d is not an attribute", id, u.Attribute)
			}
		case KindSimpleType:
			st := b.simpleTypes[ref.slot]
			if st.Base != TypeID(Nil) && !isType(st.Base) {
				fail("simple type %d: base %d is not a type", id, st.Base)
			}
		case KindComplexType:
			ct := b.complexTypes[ref.slot]
			if (ct.Content == ContentEmpty) != (ct.Particle == ParticleID(Nil)) {
				fail("complex type %d: content %s with particle %d", id, ct.Content, ct.Particle)
			}
			if (ct.Content == ContentSimple) != (ct.SimpleType != TypeID(Nil)) {
				fail("complex type %d: content %s with simple type %d", id, ct.Content, ct.SimpleType)
			}
			if ct.Particle != ParticleID(Nil) && kind(ct.Particle.Node()) != KindParticle {
				fail("complex type %d: particle %d is not a particle", id, ct.Particle)
			}
			seen := make(map[nameKey]bool, len(ct.AttributeUses))
			for _, useID := range ct.AttributeUses {
				if kind(useID.Node()) != KindAttributeUse {
					fail("complex type %d: attribute use %d is not an attribute use", id, useID)
					continue
				}
				u := b.attributeUses[b.nodes[useID].slot]
				if kind(u.Attribute.Node()) != KindAttribute {
					continue
				}
				a := b.attributes[b.nodes[u.Attribute].slot]
				key := nameKey{ns: nsURI(a.Namespace), local: a.Name}
				if seen[key] {
					fail("complex type %d: duplicate attribute use %q", id, b.strings[a.Name])
				}
				seen[key] = true
			}
		case KindParticle:
			p := b.particles[ref.slot]
			switch kind(p.Term) {
			case KindElement, KindGroup, KindWildcard:
			default:
				fail("particle %d: term %d is %s", id, p.Term, kind(p.Term))
				continue
			}
			if p.MaxOccurs != Unbounded && p.MinOccurs > p.MaxOccurs {
				fail("particle %d: minOccurs %d > maxOccurs %d", id, p.MinOccurs, p.MaxOccurs)
			}
			if kind(p.Term) == KindGroup {
				g := b.groups[b.nodes[p.Term].slot]
				if g.Compositor == CompositorAll && p.MaxOccurs > 1 {
					fail("particle %d: all group with maxOccurs %d", id, p.MaxOccurs)
				}
			}
		case KindGroup:
			g := b.groups[ref.slot]
			for _, pid := range g.Particles {
				if kind(pid.Node()) != KindParticle {
					fail("group %d: member %d is not a particle", id, pid)
					continue
				}
				if g.Compositor != CompositorAll {
					continue
				}
				p := b.particles[b.nodes[pid].slot]
				if kind(p.Term) != KindElement {
					fail("group %d: all member %d is %s", id, pid, kind(p.Term))
				}
				if p.MaxOccurs > 1 {
					fail("group %d: all member %d has maxOccurs %d", id, pid, p.MaxOccurs)
				}
			}
		}
	}

	for i, ns := range b.namespaces {
		seenElem := make(map[StringID]bool, len(ns.Elements))
		for _, e := range ns.Elements {
			name := b.elements[b.nodes[e].slot].Name
			if seenElem[name] {
				fail("namespace %d: duplicate global element %q", i, b.strings[name])
			}
			seenElem[name] = true
		}
		seenAttr := make(map[StringID]bool, len(ns.Attributes))
		for _, a := range ns.Attributes {
			name := b.attributes[b.nodes[a].slot].Name
			if seenAttr[name] {
				fail("namespace %d: duplicate global attribute %q", i, b.strings[name])
			}
			seenAttr[name] = true
		}
		seenType := make(map[StringID]bool, len(ns.Types))
		for _, t := range ns.Types {
			name := b.typeName(t)
			if seenType[name] {
				fail("namespace %d: duplicate global type %q", i, b.strings[name])
			}
			seenType[name] = true
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("corpus freeze: %w", errors.Join(errs...))
	}
	return nil
}

func (b *Builder) typeName(t TypeID) StringID {
	ref := b.nodes[t]
	if ref.kind == KindSimpleType {
		return b.simpleTypes[ref.slot].Name
	}
	return b.complexTypes[ref.slot].Name
}
