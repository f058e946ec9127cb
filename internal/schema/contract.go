package schema

// Contract is the analyzer output shape consumed by configuration UIs
// and the analyze CLI command.
type Contract struct {
	Columns   []string      `json:"columns"`
	Dtypes    []ColumnDtype `json:"dtypes"`
	Relations [][2]string   `json:"relations"`
}

// ColumnDtype describes one column in the contract.
type ColumnDtype struct {
	Name        string     `json:"name"`
	Dtype       string     `json:"dtype"` // "numeric" or "categorical"
	Suggestions Suggestion `json:"suggestions"`
}

// Contract renders the analysis into its external shape.
func (a *Analysis) Contract() *Contract {
	c := &Contract{
		Columns:   make([]string, len(a.Profiles)),
		Dtypes:    make([]ColumnDtype, len(a.Profiles)),
		Relations: make([][2]string, len(a.Relations)),
	}
	for i, p := range a.Profiles {
		c.Columns[i] = p.Name
		c.Dtypes[i] = ColumnDtype{
			Name:        p.Name,
			Dtype:       string(p.Kind),
			Suggestions: a.Suggestions[i],
		}
	}
	for i, r := range a.Relations {
		c.Relations[i] = [2]string{r.Code, r.Name}
	}
	return c
}
