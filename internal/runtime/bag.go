package runtime

import (
	"reflect"

	"github.com/aretw0/stepwise/pkg/domain"
)

type produced struct {
	typ   reflect.Type
	value any
}

// bag is the history of values produced within one recipe, newest first.
type bag struct {
	items []produced
}

func (b *bag) push(typ reflect.Type, value any) {
	b.items = append(b.items, produced{})
	copy(b.items[1:], b.items)
	b.items[0] = produced{typ: typ, value: value}
}

// find returns the newest value of exactly p's type satisfying every guard.
func (b *bag) find(p domain.Param) (any, bool) {
	for _, it := range b.items {
		if it.typ != p.Type {
			continue
		}
		if satisfiesAll(p.Guards, it.value) {
			return it.value, true
		}
	}
	return nil, false
}

func satisfiesAll(preds []domain.Predicate, value any) bool {
	for _, g := range preds {
		if !g.Matches(value) {
			return false
		}
	}
	return true
}
