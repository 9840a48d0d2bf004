package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB
	maxFuzzInput = 1 << 16
)

// declSeeds покрывают все ячейки таблицы правил и типичные ошибки синтаксиса.
var declSeeds = []string{
	"",
	"unsafe trait Send {}\nimpl Send for Foo {}\n",
	"trait Show {}\nunsafe impl Show for Foo {}\n",
	"struct Foo;\nunsafe impl Foo {}\n",
	"unsafe impl !Send for Foo {}\n",
	"impl !Send for Foo {}\n",
	"unsafe impl Send for .. {}\n",
	"impl Sync for .. {}\n",
	"mod a {\n    unsafe trait T {}\n    mod b {\n        impl super::T for X {}\n    }\n}\n",
	"impl core::marker::Send for A {}\nimpl crate::Missing for A {}\n",
	"impl<'a, T: Clone> Clone for &'a [T; 4] where T: Copy {}\n",
	"trait A {\n    fn f(&self);\n}\nunsafe impl A for B { fn f(&self) {} }\n",
	"unsafe impl !Foo {}\n",
	"impl !Send for .. {}\n",
	"impl super::X for Y {}\n",
	"/* unterminated",
	"\"open string",
	"unsafe unsafe impl",
	"impl { } } {{",
	"impl Send for",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range declSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

// addTestdataSeeds добавляет *.decl из testdata/, если каталог есть.
func addTestdataSeeds(f *testing.F) {
	matches, err := filepath.Glob(filepath.Join("testdata", "*.decl"))
	if err != nil {
		return
	}
	for _, path := range matches {
		// #nosec G304 -- path comes from a testdata glob
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f.Add(clamp(src, maxSeedBytes))
	}
}

func clamp(src []byte, limit int) []byte {
	if len(src) <= limit {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:limit]...)
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(append([]byte(nil), input[:maxLen]...), "..."...)
}
