package domain

// Keywords holds the literal tokens matched against a transcript. Tables
// are per spoken language and loaded from configuration.
type Keywords struct {
	Rotate  string `yaml:"rotate"`
	Move    string `yaml:"move"`
	Enlarge string `yaml:"enlarge"`
	Shrink  string `yaml:"shrink"`
	Notify  string `yaml:"notify"`

	Red   string `yaml:"red"`
	Green string `yaml:"green"`
	Blue  string `yaml:"blue"`

	Down string `yaml:"down"`
}

// DefaultKeywords returns the Japanese keyword table.
func DefaultKeywords() Keywords {
	return Keywords{
		Rotate:  "回転",
		Move:    "移動",
		Enlarge: "拡大",
		Shrink:  "縮小",
		Notify:  "slack",
		Red:     "赤",
		Green:   "緑",
		Blue:    "青",
		Down:    "下",
	}
}

// WithDefaults fills empty entries from base.
func (k Keywords) WithDefaults(base Keywords) Keywords {
	fill := func(v *string, d string) {
		if *v == "" {
			*v = d
		}
	}
	fill(&k.Rotate, base.Rotate)
	fill(&k.Move, base.Move)
	fill(&k.Enlarge, base.Enlarge)
	fill(&k.Shrink, base.Shrink)
	fill(&k.Notify, base.Notify)
	fill(&k.Red, base.Red)
	fill(&k.Green, base.Green)
	fill(&k.Blue, base.Blue)
	fill(&k.Down, base.Down)
	return k
}
