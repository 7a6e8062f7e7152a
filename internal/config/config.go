package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kula-app/webhook-qualifier/internal/answer"
)

// Environment variables read by Load
const (
	// EnvName is the display name sent on registration
	EnvName = "QUALIFIER_NAME"

	// EnvRegNo is the registration number; its last two digits select the answer
	EnvRegNo = "QUALIFIER_REG_NO"

	// EnvEmail is the email sent on registration
	EnvEmail = "QUALIFIER_EMAIL"

	// EnvRegistrationURL overrides the registration endpoint
	EnvRegistrationURL = "QUALIFIER_REGISTRATION_URL"

	// EnvRequestTimeout is the per-request timeout (Go duration, e.g. "15s")
	EnvRequestTimeout = "QUALIFIER_REQUEST_TIMEOUT"

	// EnvAnswersFile points to a YAML file with "odd" and "even" answers
	EnvAnswersFile = "QUALIFIER_ANSWERS_FILE"

	// EnvAnswerOdd overrides the answer for odd registration numbers
	EnvAnswerOdd = "QUALIFIER_ANSWER_ODD"

	// EnvAnswerEven overrides the answer for even registration numbers
	EnvAnswerEven = "QUALIFIER_ANSWER_EVEN"

	// EnvLogLevel sets the minimum log level
	EnvLogLevel = "QUALIFIER_LOG_LEVEL"

	// EnvEnvFile names the dotenv file consulted for unset variables
	EnvEnvFile = "QUALIFIER_ENV_FILE"
)

// DefaultRegistrationURL is the endpoint that issues the webhook and access token
const DefaultRegistrationURL = "https://bfhldevapigw.healthrx.co.in/hiring/generateWebhook/JAVA"

// DefaultEnvFile is read when EnvEnvFile is unset; a missing file is not an error
const DefaultEnvFile = ".env"

// Built-in answers for the two questions
const (
	// DefaultAnswerOdd answers Question 1: highest salary not paid on the first of the month
	DefaultAnswerOdd = `SELECT p.AMOUNT AS SALARY, CONCAT(e.FIRST_NAME, ' ', e.LAST_NAME) AS NAME, ` +
		`TIMESTAMPDIFF(YEAR, e.DOB, CURDATE()) AS AGE, d.DEPARTMENT_NAME ` +
		`FROM PAYMENTS p JOIN EMPLOYEE e ON p.EMP_ID = e.EMP_ID ` +
		`JOIN DEPARTMENT d ON e.DEPARTMENT = d.DEPARTMENT_ID ` +
		`WHERE DAY(p.PAYMENT_TIME) <> 1 ORDER BY p.AMOUNT DESC LIMIT 1;`

	// DefaultAnswerEven answers Question 2: count of younger colleagues per employee
	DefaultAnswerEven = `SELECT e1.EMP_ID, e1.FIRST_NAME, e1.LAST_NAME, d.DEPARTMENT_NAME, ` +
		`COUNT(e2.EMP_ID) AS YOUNGER_EMPLOYEES_COUNT ` +
		`FROM EMPLOYEE e1 JOIN DEPARTMENT d ON e1.DEPARTMENT = d.DEPARTMENT_ID ` +
		`LEFT JOIN EMPLOYEE e2 ON e1.DEPARTMENT = e2.DEPARTMENT AND e2.DOB > e1.DOB ` +
		`GROUP BY e1.EMP_ID, e1.FIRST_NAME, e1.LAST_NAME, d.DEPARTMENT_NAME ` +
		`ORDER BY e1.EMP_ID DESC;`
)

// Identity is the registration payload. It is never modified after Load.
type Identity struct {
	Name  string `json:"name"`
	RegNo string `json:"regNo"`
	Email string `json:"email"`
}

// Config represents the qualifier configuration
type Config struct {
	// Identity is sent to the registration endpoint
	Identity Identity `json:"identity"`

	// RegistrationURL is the endpoint that issues the webhook credential
	RegistrationURL string `json:"registrationUrl" validate:"required,url"`

	// RequestTimeout bounds every outbound HTTP request
	RequestTimeout time.Duration `json:"requestTimeout" validate:"required"`

	// Answers holds the precomputed answer for each parity
	Answers answer.Answers `json:"answers"`

	// LogLevel is the minimum log level name (debug, info, warn, error)
	LogLevel string `json:"logLevel"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Identity: Identity{
			Name:  "John Doe",
			RegNo: "REG12347",
			Email: "john@example.com",
		},
		RegistrationURL: DefaultRegistrationURL,
		RequestTimeout:  15 * time.Second,
		Answers: answer.Answers{
			Odd:  DefaultAnswerOdd,
			Even: DefaultAnswerEven,
		},
		LogLevel: "info",
	}
}

// Load builds a configuration from defaults, the dotenv file and getenv.
// Values returned by getenv take precedence over the dotenv file.
func Load(getenv func(key string) string) (*Config, error) {
	lookup, err := withEnvFile(getenv)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	setString(&cfg.Identity.Name, lookup(EnvName))
	setString(&cfg.Identity.RegNo, lookup(EnvRegNo))
	setString(&cfg.Identity.Email, lookup(EnvEmail))
	setString(&cfg.RegistrationURL, lookup(EnvRegistrationURL))
	setString(&cfg.LogLevel, lookup(EnvLogLevel))

	if raw := strings.TrimSpace(lookup(EnvRequestTimeout)); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvRequestTimeout, err)
		}
		cfg.RequestTimeout = timeout
	}

	if path := strings.TrimSpace(lookup(EnvAnswersFile)); path != "" {
		answers, err := LoadAnswers(path)
		if err != nil {
			return nil, err
		}
		setString(&cfg.Answers.Odd, answers.Odd)
		setString(&cfg.Answers.Even, answers.Even)
	}
	setString(&cfg.Answers.Odd, lookup(EnvAnswerOdd))
	setString(&cfg.Answers.Even, lookup(EnvAnswerEven))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration can drive a run
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.RegistrationURL) == "" {
		errs = append(errs, errors.New("registration URL is required"))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout))
	}
	if strings.TrimSpace(c.Answers.Odd) == "" {
		errs = append(errs, errors.New("answer for odd registration numbers is empty"))
	}
	if strings.TrimSpace(c.Answers.Even) == "" {
		errs = append(errs, errors.New("answer for even registration numbers is empty"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// withEnvFile layers the dotenv file under getenv.
// The default file may be absent; an explicitly configured one must exist.
func withEnvFile(getenv func(key string) string) (func(key string) string, error) {
	path := strings.TrimSpace(getenv(EnvEnvFile))
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}

	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return getenv, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}

	return func(key string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return values[key]
	}, nil
}

func setString(dst *string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = v
	}
}
