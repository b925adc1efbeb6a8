package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Лексические
	LexInvalidCharacter   Code = 1001
	LexUnterminatedString Code = 1002

	// Парсерные
	SynUnexpectedToken  Code = 2001
	SynUnclosedBlock    Code = 2002
	SynExpectIdentifier Code = 2003
	SynExpectOperator   Code = 2004

	// I/O
	IOLoadFileError Code = 4001

	// Проект
	ProjInvalidManifest Code = 5001

	// Наблюдаемость
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:           "Unknown error",
		LexInvalidCharacter:   "Invalid character",
		LexUnterminatedString: "Unterminated string",
		SynUnexpectedToken:    "Unexpected token",
		SynUnclosedBlock:      "Unclosed block",
		SynExpectIdentifier:   "Expected identifier",
		SynExpectOperator:     "Expected operator",
		IOLoadFileError:       "I/O load file error",
		ProjInvalidManifest:   "Invalid project manifest",
		ObsTimings:            "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("LEX%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
