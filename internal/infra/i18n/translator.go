package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage backs every key missing from the selected language.
const DefaultLanguage = "en"

//go:embed locales
var LocalesFS embed.FS

// Translator resolves dotted keys ("search.no_results") to format strings.
type Translator struct {
	lang         string
	translations map[string]string
}

// NewTranslator loads locales/<lang>.yaml from fsys on top of the default
// language. Nested YAML maps are flattened into dotted keys.
func NewTranslator(fsys fs.FS, lang string) (*Translator, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	base, err := load(fsys, DefaultLanguage)
	if err != nil {
		return nil, err
	}
	if lang != DefaultLanguage {
		extra, err := load(fsys, lang)
		if err != nil {
			return nil, err
		}
		for k, v := range extra {
			base[k] = v
		}
	}
	return &Translator{lang: lang, translations: base}, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	out := map[string]string{}
	if err := parse(data, out); err != nil {
		return nil, err
	}
	return &Translator{lang: DefaultLanguage, translations: out}, nil
}

func load(fsys fs.FS, lang string) (map[string]string, error) {
	p := path.Join("locales", lang+".yaml")
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", p, err)
	}
	out := map[string]string{}
	if err := parse(data, out); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return out, nil
}

func parse(data []byte, out map[string]string) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse translation file: %w", err)
	}
	flatten("", raw, out)
	return nil
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case string:
			out[key] = val
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

func (t *Translator) Lang() string { return t.lang }

// T formats the translation with args. Unknown keys are returned as-is.
func (t *Translator) T(key string, args ...any) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Keys lists every known key in order.
func (t *Translator) Keys() []string {
	keys := make([]string, 0, len(t.translations))
	for k := range t.translations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
