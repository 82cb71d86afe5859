package server

import (
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

const (
	minNicknameLength = 5
	maxNicknameLength = 16
	gameCodeLength    = 4
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func requestValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		_ = validate.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
			_, err := validateNickname(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("gamecode", func(fl validator.FieldLevel) bool {
			return validGameCode(fl.Field().String())
		})
	})
	return validate
}

func validateNickname(nickname string) (string, error) {
	trimmed := normalizeText(nickname)
	if len(trimmed) < minNicknameLength || len(trimmed) > maxNicknameLength {
		return "", validationError("nickname", "nickname must be 5-16 characters")
	}
	if !isNicknameText(trimmed) {
		return "", validationError("nickname", "nickname may only contain letters, digits and spaces")
	}
	return trimmed, nil
}

func validGameCode(code string) bool {
	if len(code) != gameCodeLength {
		return false
	}
	for _, r := range code {
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}

func isNicknameText(text string) bool {
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			continue
		}
		if r >= 'A' && r <= 'Z' {
			continue
		}
		if r >= '0' && r <= '9' {
			continue
		}
		if r == ' ' {
			continue
		}
		return false
	}
	return true
}
