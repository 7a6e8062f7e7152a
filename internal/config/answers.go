package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kula-app/webhook-qualifier/internal/answer"
)

// LoadAnswers reads a YAML answers file:
//
//	odd: SELECT ...
//	even: SELECT ...
//
// Either key may be omitted; the caller keeps its default for missing keys.
func LoadAnswers(path string) (answer.Answers, error) {
	f, err := os.Open(path)
	if err != nil {
		return answer.Answers{}, fmt.Errorf("failed to open answers file: %w", err)
	}
	defer f.Close()

	return DecodeAnswers(f)
}

// DecodeAnswers decodes answers from YAML, rejecting unknown keys
func DecodeAnswers(r io.Reader) (answer.Answers, error) {
	var answers answer.Answers
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&answers); err != nil && !errors.Is(err, io.EOF) {
		return answer.Answers{}, fmt.Errorf("failed to decode answers: %w", err)
	}
	return answers, nil
}
