package portabletext

// Walker receives a Body in document order. Consecutive list items are
// bracketed by ListStart/ListEnd calls, one pair per nesting level.
type Walker interface {
	Block(b *Block) error
	ListStart(ordered bool, depth int) error
	ListEnd(ordered bool, depth int) error
	Image(img *ImageBlock) error
	Code(c *CodeBlock) error
	Unknown(u *Unknown) error
}

// Walk visits every node of body with w and stops at the first error.
func Walk(body Body, w Walker) error {
	var open []bool // ordered flag per open list level

	closeTo := func(depth int) error {
		for len(open) > depth {
			ordered := open[len(open)-1]
			if err := w.ListEnd(ordered, len(open)); err != nil {
				return err
			}
			open = open[:len(open)-1]
		}
		return nil
	}

	for _, n := range body {
		b, isBlock := n.(*Block)
		if !isBlock || b.Kind() != KindListItem {
			if err := closeTo(0); err != nil {
				return err
			}
		}

		switch v := n.(type) {
		case *Block:
			if v.Kind() == KindListItem {
				depth := v.Depth()
				if err := closeTo(depth); err != nil {
					return err
				}
				if len(open) == depth && open[depth-1] != v.Ordered() {
					if err := closeTo(depth - 1); err != nil {
						return err
					}
				}
				for len(open) < depth {
					open = append(open, v.Ordered())
					if err := w.ListStart(v.Ordered(), len(open)); err != nil {
						return err
					}
				}
			}
			if err := w.Block(v); err != nil {
				return err
			}
		case *ImageBlock:
			if err := w.Image(v); err != nil {
				return err
			}
		case *CodeBlock:
			if err := w.Code(v); err != nil {
				return err
			}
		case *Unknown:
			if err := w.Unknown(v); err != nil {
				return err
			}
		}
	}
	return closeTo(0)
}
