package lemma

// variantPairs lists American/British spelling counterparts. The lookup
// table is built in both directions.
var variantPairs = [][2]string{
	{"color", "colour"},
	{"favorite", "favourite"},
	{"honor", "honour"},
	{"labor", "labour"},
	{"flavor", "flavour"},
	{"neighbor", "neighbour"},
	{"humor", "humour"},
	{"center", "centre"},
	{"meter", "metre"},
	{"kilometer", "kilometre"},
	{"liter", "litre"},
	{"theater", "theatre"},
	{"fiber", "fibre"},
	{"gray", "grey"},
	{"organize", "organise"},
	{"realize", "realise"},
	{"analyze", "analyse"},
	{"catalog", "catalogue"},
	{"dialog", "dialogue"},
	{"defense", "defence"},
}

var spellingVariants = func() map[string]string {
	m := make(map[string]string, len(variantPairs)*2)
	for _, p := range variantPairs {
		m[p[0]] = p[1]
		m[p[1]] = p[0]
	}
	return m
}()
