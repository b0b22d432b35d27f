package config

import (
	"encoding/json"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/schoolhub/school-messaging-api/models"
)

// Config holds the project config values
type Config struct {
	URL             string `envconfig:"DB_URI"`
	DatabaseName    string `envconfig:"DB_NAME"`
	BaseURL         string `envconfig:"BASE_URL"`
	Port            string `envconfig:"PORT" default:"8080"`
	JWTSecret       string `envconfig:"JWT_SECRET"`
	SendgridAPIKey  string `envconfig:"SENDGRID_API_KEY"`
	DigestFromName  string `envconfig:"DIGEST_FROM_NAME" default:"SchoolHub"`
	DigestFromEmail string `envconfig:"DIGEST_FROM_EMAIL" default:"no-reply@schoolhub.io"`
	DigestSchedule  string `envconfig:"DIGEST_SCHEDULE" default:"0 7 * * *"`
}

// New sets up all config related services
func New() *Config {

	//setup zap logger and replace default logger
	logger := zap.NewExample()
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	// .env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	var conf Config
	if err := envconfig.Process("", &conf); err != nil {
		zap.S().With(err).Error("failed to process environment config")
	}
	return &conf
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().With(err).Error(message)
	w.WriteHeader(httpStatusCode)
	b, _ := json.Marshal(models.ErrorMessageResponse{Response: models.MessageError{Message: message, Error: err.Error()}})
	w.Write(b)
}
