package validation

import "strings"

// ValidatePostTitle and ValidatePostText share the same shape: required on
// create, optional on update where empty means "leave unchanged".

func ValidatePostTitle(title string, required bool) error {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		if required {
			return invalid("Title is required")
		}
		return nil
	}
	if len(trimmed) > 50 {
		return invalid("Title is too long (max 50 characters)")
	}
	return nil
}

func ValidatePostText(text string, required bool) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		if required {
			return invalid("Text is required")
		}
		return nil
	}
	if len(trimmed) > 2000 {
		return invalid("Text is too long (max 2000 characters)")
	}
	return nil
}
