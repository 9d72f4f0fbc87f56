package rerrors

import "testing"

func TestFatalKindsPanic(t *testing.T) {
	for _, kind := range []Kind{KindStructural, KindFFI, KindDomain, KindWriterIO} {
		t.Run(kind.String(), func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatalf("Fatalf(%s) did not panic", kind)
				}
				re, ok := r.(*RamError)
				if !ok {
					t.Fatalf("panicked with %T, want *RamError", r)
				}
				if re.Kind != kind {
					t.Fatalf("kind = %s, want %s", re.Kind, kind)
				}
				if re.Error() == "" {
					t.Fatal("empty diagnostic")
				}
			}()
			Fatalf(kind, "boom %d", 1)
		})
	}
}

func TestNonFatalKindsWarn(t *testing.T) {
	for _, kind := range []Kind{KindRegex, KindReaderIO} {
		t.Run(kind.String(), func(t *testing.T) {
			defer func() {
				if r := recover(); r != nil {
					t.Fatalf("Fatalf(%s) panicked: %v", kind, r)
				}
			}()
			Fatalf(kind, "just a warning")
		})
	}
}

func TestRecoverIsNoOpWithoutPanic(t *testing.T) {
	flushed := false
	func() {
		defer Recover(func() { flushed = true })
	}()
	if flushed {
		t.Fatal("Recover flushed without a panic")
	}
}

func TestHumanCount(t *testing.T) {
	if got := HumanCount(1234567); got != "1,234,567" {
		t.Fatalf("HumanCount = %q", got)
	}
}
