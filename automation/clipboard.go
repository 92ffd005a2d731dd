package automation

import (
	"errors"

	"github.com/atotto/clipboard"
)

// Clipboard reads and writes the system clipboard text.
type Clipboard interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) ReadAll() (string, error) {
	if clipboard.Unsupported {
		return "", errors.New("no clipboard utility available")
	}
	return clipboard.ReadAll()
}

func (systemClipboard) WriteAll(text string) error {
	if clipboard.Unsupported {
		return errors.New("no clipboard utility available")
	}
	return clipboard.WriteAll(text)
}

func SystemClipboard() Clipboard {
	return systemClipboard{}
}
