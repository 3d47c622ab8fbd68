package ast

// CloneItems deep-copies a body item slice.
func CloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = CloneItem(it)
	}
	return out
}

// CloneItem deep-copies one body item. Dispatch is exhaustive over the
// closed item set; expressions are shared, never copied.
func CloneItem(item Item) Item {
	switch it := item.(type) {
	case *ModuleInst:
		cp := &ModuleInst{
			Attrs:  it.Attrs.Clone(),
			Module: it.Module,
			Name:   it.Name,
			Params: cloneBindings(it.Params),
			Ports:  cloneBindings(it.Ports),
		}
		if it.Within != nil {
			within := *it.Within
			cp.Within = &within
		}
		if it.Elaborated != nil {
			cp.Elaborated = it.Elaborated.Clone()
		}
		return cp
	case *GenCase:
		arms := make([]GenCaseArm, len(it.Arms))
		for i, arm := range it.Arms {
			arms[i] = GenCaseArm{Matches: arm.Matches, Items: CloneItems(arm.Items)}
		}
		return &GenCase{
			Selector:   it.Selector,
			Arms:       arms,
			Elaborated: CloneItems(it.Elaborated),
			Expanded:   it.Expanded,
		}
	case *GenIf:
		return &GenIf{
			Cond:       it.Cond,
			Then:       CloneItems(it.Then),
			Else:       CloneItems(it.Else),
			Elaborated: CloneItems(it.Elaborated),
			Expanded:   it.Expanded,
		}
	case *GenLoop:
		return &GenLoop{
			Genvar:     it.Genvar,
			From:       it.From,
			Below:      it.Below,
			Body:       CloneItems(it.Body),
			Elaborated: CloneItems(it.Elaborated),
			Expanded:   it.Expanded,
		}
	case *GenBlock:
		return &GenBlock{
			Name:   it.Name,
			Index:  it.Index,
			Genvar: it.Genvar,
			Value:  it.Value,
			Items:  CloneItems(it.Items),
		}
	case *GenvarDecl:
		cp := *it
		return &cp
	case *IntegerDecl:
		cp := *it
		return &cp
	case *LocalparamDecl:
		cp := *it
		return &cp
	case *NetDecl:
		cp := *it
		return &cp
	case *ParamDecl:
		cp := *it
		return &cp
	case *RegDecl:
		cp := *it
		return &cp
	case *Assign:
		cp := *it
		return &cp
	case *InlinedScope:
		return &InlinedScope{
			Inst: CloneItem(it.Inst).(*ModuleInst),
			Body: it.Body.Clone(),
		}
	default:
		panic("ast: unhandled item kind in CloneItem")
	}
}

func cloneBindings(bs []Binding) []Binding {
	if bs == nil {
		return nil
	}
	out := make([]Binding, len(bs))
	copy(out, bs)
	return out
}
