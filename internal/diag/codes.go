package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Шаблонные: баланс {{ / }}
	TplInfo                 Code = 1000
	TplUnmatchedOpenMarker  Code = 1001
	TplUnmatchedCloseMarker Code = 1002

	// Ошибки I/O
	IOLoadFileError Code = 4001
	IOCacheError    Code = 4002

	// Проект / конфигурация
	PrjConfigError Code = 5001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:             "Unknown error",
	TplInfo:                 "Template information",
	TplUnmatchedOpenMarker:  "Unmatched opening marker",
	TplUnmatchedCloseMarker: "Unmatched closing marker",
	IOLoadFileError:         "I/O load file error",
	IOCacheError:            "Result cache error",
	PrjConfigError:          "Project configuration error",
	ObsInfo:                 "Observability information",
	ObsTimings:              "Pipeline timings",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("TPL%04d", ic)
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
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
