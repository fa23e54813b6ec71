package config

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ibogrupolda-maker/ssm-dispatch-api/models"
)

// Operator is one account allowed to authenticate against the API. Accounts
// are provisioned through the environment; there is no signup flow.
type Operator struct {
	ID           string
	Name         string
	Username     string
	Role         models.Role
	CompanyID    string
	PasswordHash string
}

// Config holds the project config values
type Config struct {
	URL             string
	DatabaseName    string
	BaseURL         string
	Port            string
	JWTSecret       string
	SimTickInterval time.Duration
	Operators       []Operator
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger, _ := setLogger(os.Getenv("APP_ENV"))
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		URL:             os.Getenv("DB_URI"),
		DatabaseName:    os.Getenv("DB_NAME"),
		BaseURL:         os.Getenv("BASE_URL"),
		Port:            os.Getenv("PORT"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		SimTickInterval: simTickInterval(os.Getenv("SIM_TICK_MS")),
		Operators:       parseOperators(os.Getenv("OPERATOR_ACCOUNTS")),
	}

}

// setLogger picks the zap preset for the given environment
func setLogger(env string) (*zap.Logger, error) {
	switch env {
	case "production":
		return zap.NewProduction()
	case "development":
		return zap.NewDevelopment()
	}
	return zap.NewExample(), nil
}

// simTickInterval parses the simulator tick period in milliseconds; zero
// lets the simulator use its default cadence
func simTickInterval(ms string) time.Duration {
	if ms == "" {
		return 0
	}
	n, err := strconv.Atoi(ms)
	if err != nil || n <= 0 {
		zap.S().Warnf("invalid SIM_TICK_MS %q, using default", ms)
		return 0
	}
	return time.Duration(n) * time.Millisecond
}

// parseOperators reads provisioned accounts from the environment. Entries
// are ";" separated, fields "|" separated:
// id|name|username|role|companyId|bcryptHash
func parseOperators(raw string) []Operator {
	if raw == "" {
		return nil
	}
	var out []Operator
	for _, entry := range strings.Split(raw, ";") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		fields := strings.Split(entry, "|")
		if len(fields) != 6 {
			zap.S().Warnf("skipping malformed operator account entry %q", entry)
			continue
		}
		role := models.Role(fields[3])
		if !role.IsValid() {
			zap.S().Warnf("skipping operator account %q with unknown role %q", fields[2], fields[3])
			continue
		}
		out = append(out, Operator{
			ID:           fields[0],
			Name:         fields[1],
			Username:     fields[2],
			Role:         role,
			CompanyID:    fields[4],
			PasswordHash: fields[5],
		})
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body
// for a given message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: errText}})
	w.Write(b)
}
