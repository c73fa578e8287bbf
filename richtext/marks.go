package richtext

import "github.com/rgonek/gutencard/schema"

type markStack struct {
	items []schema.Mark
}

func newMarkStack() *markStack {
	return &markStack{}
}

func (s *markStack) push(mark schema.Mark) {
	s.items = append(s.items, mark.Clone())
}

func (s *markStack) popByType(markType string) bool {
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].Type != markType {
			continue
		}
		s.items = append(s.items[:i], s.items[i+1:]...)
		return true
	}

	return false
}

func (s *markStack) current() []schema.Mark {
	if len(s.items) == 0 {
		return nil
	}

	marks := make([]schema.Mark, 0, len(s.items))
	for _, mark := range s.items {
		marks = append(marks, mark.Clone())
	}

	return marks
}

// marksToClose returns the active marks that are not a shared prefix of
// next, outermost first.
func marksToClose(active, next []schema.Mark) []schema.Mark {
	for i, mark := range active {
		if i >= len(next) || !mark.Equal(next[i]) {
			return active[i:]
		}
	}
	return nil
}

// marksToOpen returns the marks of next after the prefix shared with active.
func marksToOpen(active, next []schema.Mark) []schema.Mark {
	common := 0
	for common < len(active) && common < len(next) && active[common].Equal(next[common]) {
		common++
	}
	return next[common:]
}
