package i18n

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/kindpredictions/kindbot/resources"
)

// Handlers run concurrently, so the lazy load and the lookups share one lock.
var (
	mu           sync.Mutex
	translations = make(map[string]map[string]string)
	loaded       = make(map[string]bool)
)

// load reads the embedded translation file for lang. The language is marked
// loaded even on failure so a broken file is reported once, not per lookup.
func load(lang string) {
	loaded[lang] = true

	raw, err := resources.FS.ReadFile(fmt.Sprintf("i18n/%s.yml", lang))
	if err != nil {
		log.WithError(err).Errorln("cant load i18n")
		return
	}
	entries := make(map[string]string)
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		log.WithError(err).Errorln("cant unmarshal i18n")
		return
	}
	translations[lang] = entries
}

func Get(key, lang string) string {
	if "en" == lang {
		return key
	}
	mu.Lock()
	if !loaded[lang] {
		load(lang)
	}
	res, ok := translations[lang][key]
	mu.Unlock()
	if ok {
		return res
	}
	log.Tracef(`no translation for key %q`, key)
	return key
}
