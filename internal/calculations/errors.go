package calculations

import (
	"errors"
	"fmt"
)

// ErrInvalidInput возвращается при структурно некорректных входных данных.
// Экономически невыгодные результаты ошибкой не являются и передаются через Alert.
var ErrInvalidInput = errors.New("invalid input")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
