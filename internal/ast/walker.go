package ast

// VisitFunc вызывается для каждого элемента в pre-order порядке.
// Возврат false запрещает спуск в детей этого элемента.
type VisitFunc func(id ItemID, item *Item) bool

// Walker обходит дерево элементов файла: родитель раньше потомков,
// каждый элемент ровно один раз.
type Walker struct {
	items *Items
}

func NewWalker(items *Items) Walker {
	return Walker{items: items}
}

// WalkFile visits every item of the file.
func (w Walker) WalkFile(file *File, visit VisitFunc) {
	if file == nil {
		return
	}
	w.walkList(file.Items, visit)
}

// Walk visits root and its descendants.
func (w Walker) Walk(root ItemID, visit VisitFunc) {
	// явный стек вместо рекурсии: вложенность не ограничена
	stack := []ItemID{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		item := w.items.Get(id)
		if item == nil {
			continue
		}
		if !visit(id, item) {
			continue
		}
		children := w.items.Children(id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

func (w Walker) walkList(ids []ItemID, visit VisitFunc) {
	for _, id := range ids {
		w.Walk(id, visit)
	}
}
