package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB, ограничение для тестового корпуса
	maxFuzzInput = 1 << 16  // 64 KiB
)

var languageSeeds = []string{
	"",
	"$my_app $mol_page\n",
	"$my_app $mol_page {\n\t<= title \"Hello\"\n}\n",
	"$my_app $mol_page {\n\t<=> value 42\n\t=> done null\n\t? hint \"x\"\n}\n",
	"$my_app $mol_page {\n\tbody $mol_list {\n\t\t<= rows null\n\t}\n}\n",
	"# comment\n$a $b { # trailing\n\t# inner\n}\n",
	"123abc",
	"<= <=",
	"$a $b {\n",
	"$a $b { <= }",
	"\"unterminated",
	"$a $b ~",
	"\xef\xbb\xbf$a $b\r\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range languageSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.view.tree файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if filepath.Ext(path) != ".tree" {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}

func clampInput(input []byte) []byte {
	if len(input) > maxFuzzInput {
		return append([]byte(nil), input[:maxFuzzInput]...)
	}
	return append([]byte(nil), input...)
}
