// Package i18n resolves the localized messages shipped with the
// extension.
//
// Messages live in MediaWiki-style JSON files under data/, one file per
// language, keyed by message key with $1-style placeholders.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

//go:embed data/*.json
var dataFS embed.FS

var (
	// tags holds every shipped language; English is first so the
	// matcher falls back to it.
	tags []language.Tag

	// messages maps language tag → message key → message text.
	messages = map[language.Tag]map[string]string{}

	matcher language.Matcher
)

func init() {
	entries, err := fs.ReadDir(dataFS, "data")
	if err != nil {
		panic(err)
	}

	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		tag := language.MustParse(name)

		b, err := dataFS.ReadFile(path.Join("data", e.Name()))
		if err != nil {
			panic(err)
		}

		// The @metadata key holds authorship info, not a message, so
		// decode loosely and keep only the strings.
		var raw map[string]any
		if err := json.Unmarshal(b, &raw); err != nil {
			panic(fmt.Sprintf("i18n file %s: %v", e.Name(), err))
		}

		msgs := map[string]string{}
		for k, v := range raw {
			if s, ok := v.(string); ok && !strings.HasPrefix(k, "@") {
				msgs[k] = s
			}
		}

		messages[tag] = msgs
		if tag == language.English {
			tags = append([]language.Tag{tag}, tags...)
		} else {
			tags = append(tags, tag)
		}
	}

	matcher = language.NewMatcher(tags)
}

// Languages returns the tags of every shipped language.
func Languages() []language.Tag {
	return append([]language.Tag(nil), tags...)
}

// Msg resolves a message key in the closest shipped language and
// substitutes $1, $2, ... placeholders with params.
//
// An unknown key renders as ⧼key⧽, which is what MediaWiki shows for
// missing messages.
func Msg(lang, key string, params ...string) string {
	tag, _ := language.Parse(lang)
	_, idx, _ := matcher.Match(tag)

	msg, ok := messages[tags[idx]][key]
	if !ok {
		// Broken language files shouldn't hide English messages.
		msg, ok = messages[language.English][key]
	}
	if !ok {
		return "⧼" + key + "⧽"
	}

	// Substitute in reverse so $10 is not clobbered by $1.
	for i := len(params); i >= 1; i-- {
		msg = strings.ReplaceAll(msg, "$"+strconv.Itoa(i), params[i-1])
	}

	return msg
}
