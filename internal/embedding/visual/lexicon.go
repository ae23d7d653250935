package visual

// lexicon maps everyday scene words onto the colour and layout vocabulary
// produced by Describe.
var lexicon = map[string][]string{
	"sunset":    {"orange", "red", "pink"},
	"sunrise":   {"orange", "yellow", "pink"},
	"dusk":      {"orange", "purple", "dark"},
	"sky":       {"blue", "bright"},
	"sea":       {"blue", "cyan"},
	"ocean":     {"blue", "cyan"},
	"water":     {"blue", "cyan"},
	"lake":      {"blue", "cyan"},
	"beach":     {"blue", "yellow", "bright"},
	"forest":    {"green"},
	"tree":      {"green"},
	"trees":     {"green"},
	"grass":     {"green"},
	"leaf":      {"green"},
	"leaves":    {"green"},
	"jungle":    {"green"},
	"night":     {"dark", "black"},
	"snow":      {"white", "bright"},
	"ice":       {"white", "cyan"},
	"fire":      {"red", "orange"},
	"flame":     {"red", "orange"},
	"desert":    {"yellow", "orange"},
	"sand":      {"yellow", "orange"},
	"flower":    {"pink", "red", "purple"},
	"flowers":   {"pink", "red", "purple"},
	"wood":      {"brown"},
	"grey":      {"gray"},
	"crimson":   {"red"},
	"scarlet":   {"red"},
	"violet":    {"purple"},
	"azure":     {"blue"},
	"panorama":  {"landscape"},
	"selfie":    {"portrait"},
	"vivid":     {"colorful"},
	"colourful": {"colorful"},
	"pale":      {"muted"},
}

type hanConcept struct {
	key   string
	words []string
}

// hanConcepts are matched by substring since Chinese has no word breaks.
var hanConcepts = []hanConcept{
	{"日落", []string{"orange", "red", "pink"}},
	{"日出", []string{"orange", "yellow", "pink"}},
	{"天空", []string{"blue", "bright"}},
	{"海", []string{"blue", "cyan"}},
	{"湖", []string{"blue", "cyan"}},
	{"森林", []string{"green"}},
	{"草", []string{"green"}},
	{"树", []string{"green"}},
	{"夜", []string{"dark", "black"}},
	{"雪", []string{"white", "bright"}},
	{"火", []string{"red", "orange"}},
	{"沙漠", []string{"yellow", "orange"}},
	{"花", []string{"pink", "red", "purple"}},
	{"红", []string{"red"}},
	{"蓝", []string{"blue"}},
	{"绿", []string{"green"}},
	{"黄", []string{"yellow"}},
	{"白", []string{"white"}},
	{"黑", []string{"black"}},
}
