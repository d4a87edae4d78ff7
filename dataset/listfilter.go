package dataset

type ListFilter struct {
	Size      *Size
	Quant     *Quant
	FineTuned *bool
}

func (filter ListFilter) SetSize(v Size) ListFilter {
	filter.Size = &v
	return filter
}

func (filter ListFilter) SetQuant(v Quant) ListFilter {
	filter.Quant = &v
	return filter
}

func (filter ListFilter) SetFineTuned(v bool) ListFilter {
	filter.FineTuned = &v
	return filter
}
