package i18n

import (
	"embed"
	"fmt"
	"net/http"
	"path"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var bundleFS embed.FS

// Supported locales, in bundle file order.
const (
	LangEnglish = "en"
	LangFrench  = "fr"
)

// Bundle holds the messages of every supported locale.
type Bundle struct {
	messages map[string]map[string]string
	tags     []language.Tag
	matcher  language.Matcher
	fallback string
	uni      *ut.UniversalTranslator
}

// NewBundle loads the embedded bundles. defaultLocale is used when a
// request names no supported language.
func NewBundle(defaultLocale string) (*Bundle, error) {
	b := &Bundle{
		messages: make(map[string]map[string]string),
		fallback: defaultLocale,
		uni:      ut.New(en.New(), en.New(), fr.New()),
	}

	for _, lang := range []string{LangEnglish, LangFrench} {
		data, err := bundleFS.ReadFile(path.Join("locales", lang+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s bundle: %w", lang, err)
		}
		msgs, err := parseBundle(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s bundle: %w", lang, err)
		}
		b.messages[lang] = msgs
	}

	if _, ok := b.messages[defaultLocale]; !ok {
		return nil, fmt.Errorf("unsupported default locale %q", defaultLocale)
	}

	// The matcher falls back to its first tag.
	b.tags = []language.Tag{language.Make(defaultLocale)}
	for _, lang := range []string{LangEnglish, LangFrench} {
		if lang != defaultLocale {
			b.tags = append(b.tags, language.Make(lang))
		}
	}
	b.matcher = language.NewMatcher(b.tags)
	return b, nil
}

// parseBundle flattens nested YAML maps into dotted keys.
func parseBundle(data []byte) (map[string]string, error) {
	var root map[string]interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	out := make(map[string]string)
	flatten("", root, out)
	return out, nil
}

func flatten(prefix string, node map[string]interface{}, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		case nil:
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Languages returns the supported locales, default first.
func (b *Bundle) Languages() []string {
	out := make([]string, 0, len(b.tags))
	for _, t := range b.tags {
		base, _ := t.Base()
		out = append(out, base.String())
	}
	return out
}

// Match picks the best supported locale for the given preferences. Each
// entry may be a single tag ("fr") or an Accept-Language value
// ("fr-CH, fr;q=0.9, en;q=0.8"); earlier entries win.
func (b *Bundle) Match(prefs ...string) *Localizer {
	for _, p := range prefs {
		if strings.TrimSpace(p) == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil || len(tags) == 0 {
			continue
		}
		_, idx, conf := b.matcher.Match(tags...)
		if conf == language.No {
			continue
		}
		base, _ := b.tags[idx].Base()
		return b.localizer(base.String())
	}
	return b.localizer(b.fallback)
}

// FromRequest picks the locale from ?lang= first, then Accept-Language.
func (b *Bundle) FromRequest(r *http.Request) *Localizer {
	return b.Match(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func (b *Bundle) localizer(lang string) *Localizer {
	trans, _ := b.uni.GetTranslator(lang)
	return &Localizer{
		lang:     lang,
		messages: b.messages[lang],
		fallback: b.messages[b.fallback],
		trans:    trans,
	}
}

// RegisterValidation installs validator messages for every locale on v.
func (b *Bundle) RegisterValidation(v *validator.Validate) error {
	enTrans, _ := b.uni.GetTranslator(LangEnglish)
	if err := en_translations.RegisterDefaultTranslations(v, enTrans); err != nil {
		return fmt.Errorf("failed to register en validation messages: %w", err)
	}
	frTrans, _ := b.uni.GetTranslator(LangFrench)
	if err := fr_translations.RegisterDefaultTranslations(v, frTrans); err != nil {
		return fmt.Errorf("failed to register fr validation messages: %w", err)
	}
	return nil
}
