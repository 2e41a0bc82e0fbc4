package i18n

import (
	"sync"
	"testing"
)

func TestGetEnglishPassesKeysThrough(t *testing.T) {
	if got := Get("Nothing pending", "en"); got != "Nothing pending" {
		t.Fatalf("unexpected en translation: %q", got)
	}
}

func TestGetRussianTranslations(t *testing.T) {
	if got := Get("Nothing pending", "ru"); got != "Новых предсказаний нет" {
		t.Fatalf("unexpected ru translation: %q", got)
	}
	// unknown keys fall back to the key itself
	if got := Get("no such key", "ru"); got != "no such key" {
		t.Fatalf("unexpected fallback: %q", got)
	}
}

func TestGetConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := Get("Nothing pending", "ru"); got != "Новых предсказаний нет" {
					t.Errorf("unexpected translation: %q", got)
				}
				// a language without a translation file races the lazy
				// load itself, not just the lookups
				if got := Get("Nothing pending", "by"); got != "Nothing pending" {
					t.Errorf("unexpected fallback: %q", got)
				}
			}
		}()
	}
	wg.Wait()
}
