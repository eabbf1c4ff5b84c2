package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30

	MinProjectTitleLength       = 3
	MaxProjectTitleLength       = 200
	MinProjectDescriptionLength = 10
	MaxProjectDescriptionLength = 5000

	MinProposalScopeLength = 10
	MaxProposalScopeLength = 2000
	MinTimelineDays        = 1
	MaxTimelineDays        = 365

	MinDisputeReasonLength = 10
	MaxDisputeReasonLength = 2000
	MaxEvidenceItems       = 20
	MaxEvidenceItemLength  = 2000

	MinPostTitleLength = 3
	MaxPostTitleLength = 200
	MinPostBodyLength  = 1
	MaxPostBodyLength  = 10000
	MaxPostTags        = 10

	MinBudget = 0.0
	MaxBudget = 10000000.0 // 10 миллионов
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s must be at least %d characters", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s must be at most %d characters", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("invalid email format")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("email local part must be between 1 and 64 characters")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("email domain part must be between 1 and 255 characters")
	}

	localRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !localRegex.MatchString(localPart) {
		return fmt.Errorf("email local part contains invalid characters")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("email domain part has invalid format")
	}

	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is required")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("username", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username may contain only letters, digits and underscore")
	}

	if unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("username cannot start with a digit")
	}

	return nil
}

// ValidateProjectTitle проверяет заголовок проекта.
func ValidateProjectTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("project title is required")
	}
	return ValidateLength("project title", strings.TrimSpace(title), MinProjectTitleLength, MaxProjectTitleLength)
}

// ValidateProjectDescription проверяет описание проекта.
func ValidateProjectDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("project description is required")
	}
	return ValidateLength("project description", strings.TrimSpace(description), MinProjectDescriptionLength, MaxProjectDescriptionLength)
}

// ValidateBudget проверяет бюджетную вилку проекта.
func ValidateBudget(budgetMin, budgetMax float64) error {
	if budgetMin < MinBudget || budgetMax < MinBudget {
		return fmt.Errorf("budget cannot be negative")
	}
	if budgetMin > MaxBudget || budgetMax > MaxBudget {
		return fmt.Errorf("budget cannot exceed %.0f", MaxBudget)
	}
	if budgetMin > budgetMax {
		return fmt.Errorf("minimum budget cannot exceed maximum")
	}
	return nil
}

// ValidateProposalScope проверяет описание объёма работ в отклике.
func ValidateProposalScope(scope string) error {
	if strings.TrimSpace(scope) == "" {
		return fmt.Errorf("proposal scope is required")
	}
	return ValidateLength("proposal scope", strings.TrimSpace(scope), MinProposalScopeLength, MaxProposalScopeLength)
}

// ValidateTimeline проверяет срок выполнения в днях.
func ValidateTimeline(days int) error {
	if days < MinTimelineDays || days > MaxTimelineDays {
		return fmt.Errorf("timeline must be between %d and %d days", MinTimelineDays, MaxTimelineDays)
	}
	return nil
}

// ValidateDisputeReason проверяет причину спора.
func ValidateDisputeReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("dispute reason is required")
	}
	return ValidateLength("dispute reason", strings.TrimSpace(reason), MinDisputeReasonLength, MaxDisputeReasonLength)
}

// ValidateEvidence проверяет список свидетельств.
func ValidateEvidence(evidence []string) error {
	if len(evidence) > MaxEvidenceItems {
		return fmt.Errorf("evidence list cannot exceed %d items", MaxEvidenceItems)
	}
	for _, item := range evidence {
		if strings.TrimSpace(item) == "" {
			return fmt.Errorf("evidence item cannot be empty")
		}
		if utf8.RuneCountInString(item) > MaxEvidenceItemLength {
			return fmt.Errorf("evidence item cannot exceed %d characters", MaxEvidenceItemLength)
		}
	}
	return nil
}

// ValidatePostTitle проверяет заголовок поста сообщества.
func ValidatePostTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("post title is required")
	}
	return ValidateLength("post title", strings.TrimSpace(title), MinPostTitleLength, MaxPostTitleLength)
}

// ValidatePostBody проверяет тело поста сообщества.
func ValidatePostBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return fmt.Errorf("post body is required")
	}
	return ValidateLength("post body", strings.TrimSpace(body), MinPostBodyLength, MaxPostBodyLength)
}
