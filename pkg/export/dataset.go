package export

// Dataset is a titled table. Each row holds one value per header, in header order.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Validate reports the first structural problem in the dataset.
func (d Dataset) Validate() error {
	if len(d.Headers) == 0 {
		return ErrNoHeaders
	}
	for i, row := range d.Rows {
		if len(row) != len(d.Headers) {
			return &RowWidthError{Row: i, Got: len(row), Want: len(d.Headers)}
		}
	}
	return nil
}
