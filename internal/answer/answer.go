// Package answer selects the precomputed query to submit for a registration number.
//
// The choice depends only on the parity of the last two digits of the
// registration number: odd numbers get the first question's answer, even
// numbers the second. Selection is pure and never touches the network.
package answer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedIdentifier is returned when the registration number does not end in two digits
var ErrMalformedIdentifier = errors.New("malformed registration number")

// suffixLen is the number of trailing characters that carry the parity
const suffixLen = 2

// Answer is the query text submitted to the webhook
type Answer struct {
	Query string `json:"finalQuery"`
}

// Answers holds the two precomputed answers
type Answers struct {
	// Odd answers "Question 1", used when the suffix is odd
	Odd string `json:"odd" yaml:"odd"`

	// Even answers "Question 2", used when the suffix is even
	Even string `json:"even" yaml:"even"`
}

// Suffix parses the trailing two characters of regNo as a base-10 integer.
func Suffix(regNo string) (int, error) {
	regNo = strings.TrimSpace(regNo)
	if len(regNo) < suffixLen {
		return 0, fmt.Errorf("%w: %q is shorter than %d characters", ErrMalformedIdentifier, regNo, suffixLen)
	}

	tail := regNo[len(regNo)-suffixLen:]
	for _, r := range tail {
		// strconv.Atoi accepts a leading sign, which is not a digit here
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: suffix %q of %q is not numeric", ErrMalformedIdentifier, tail, regNo)
		}
	}

	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMalformedIdentifier, err)
	}
	return n, nil
}

// Selection is an answer together with the suffix and question that chose it
type Selection struct {
	Answer Answer

	// Suffix is the numeric value of the last two characters
	Suffix int

	// Question is 1 for odd suffixes and 2 for even ones
	Question int
}

// Choose selects the answer for regNo and reports how it was chosen.
func Choose(regNo string, answers Answers) (Selection, error) {
	n, err := Suffix(regNo)
	if err != nil {
		return Selection{}, err
	}
	if n%2 == 1 {
		return Selection{Answer: Answer{Query: answers.Odd}, Suffix: n, Question: 1}, nil
	}
	return Selection{Answer: Answer{Query: answers.Even}, Suffix: n, Question: 2}, nil
}

// Select returns the answer matching the parity of regNo's numeric suffix.
func Select(regNo string, answers Answers) (Answer, error) {
	sel, err := Choose(regNo, answers)
	if err != nil {
		return Answer{}, err
	}
	return sel.Answer, nil
}
