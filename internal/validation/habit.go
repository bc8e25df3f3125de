package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hexagonhq/hexagon/internal/model"
)

const maxTitleLength = 200

// ValidateHabit validates caller-supplied habit fields
func ValidateHabit(title, status, category string, progress, target int, frequency string) error {
	trimmed := strings.TrimSpace(title)

	if trimmed == "" {
		return errors.New("title is required")
	}

	if len(trimmed) > maxTitleLength {
		return fmt.Errorf("title is too long (max %d characters)", maxTitleLength)
	}

	if strings.TrimSpace(category) == "" {
		return errors.New("category is required")
	}

	if !model.ValidStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}

	if progress < 0 {
		return errors.New("progress cannot be negative")
	}

	if target <= 0 {
		return errors.New("target must be positive")
	}

	if !model.ValidFrequency(frequency) {
		return fmt.Errorf("unknown frequency %q", frequency)
	}

	return nil
}
