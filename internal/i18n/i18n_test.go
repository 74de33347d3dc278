package i18n

import "testing"

func TestDetectDefaultsToEnglish(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
	if got := Detect(); got != English {
		t.Fatalf("Detect() = %v, want English", got)
	}
}

func TestDetectChinesePrefix(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "zh_CN.UTF-8")
	if got := Detect(); got != Chinese {
		t.Fatalf("Detect() = %v, want Chinese", got)
	}
}

func TestDetectPrefersLCALLOverLANG(t *testing.T) {
	t.Setenv("LC_ALL", "en_US.UTF-8")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "zh_CN.UTF-8")
	if got := Detect(); got != English {
		t.Fatalf("Detect() = %v, want English (LC_ALL takes precedence)", got)
	}
}

func TestCatalogResolvesBothLanguages(t *testing.T) {
	en := New(English)
	zh := New(Chinese)
	if en.T(SessionNotFound) == zh.T(SessionNotFound) {
		t.Fatalf("expected distinct translations for SessionNotFound")
	}
	if en.T(SessionNotFound) == "" || zh.T(SessionNotFound) == "" {
		t.Fatalf("expected non-empty translations")
	}
}
