package validation

import (
	"fmt"

	dErrors "credverify/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (256 KB).
	// Resume payloads carry free-text experience sections.
	MaxBodySize = 256 * 1024
)

// Slice element count limits
const (
	// MaxSkills is the maximum number of skills on a resume or test request.
	MaxSkills = 50

	// MaxExperienceEntries is the maximum number of work history entries.
	MaxExperienceEntries = 30

	// MaxEducationEntries is the maximum number of education entries.
	MaxEducationEntries = 10
)

// String element length limits
const (
	// MaxSkillLength is the maximum length of an individual skill name.
	MaxSkillLength = 100

	// MaxFreeTextLength bounds summaries and job descriptions.
	MaxFreeTextLength = 5000

	// MaxTokenIDLength bounds an on-chain token id in decimal form.
	MaxTokenIDLength = 78
)

// CheckSliceCount validates that a slice does not exceed the maximum count.
func CheckSliceCount(fieldName string, count, max int) error {
	if count > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("too many %s: max %d allowed", fieldName, max))
	}
	return nil
}

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// CheckEachStringLength validates that each string in a slice does not exceed the maximum length.
func CheckEachStringLength(fieldName string, values []string, max int) error {
	for _, v := range values {
		if len(v) > max {
			return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
		}
	}
	return nil
}
