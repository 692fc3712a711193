package util

import (
	"errors"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/api/googleapi"
)

// IsNotFound reports whether err is the control plane saying the resource
// does not exist yet.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}

func DeSlasher(str string) string {
	dashes := strings.Replace(str, "/", "-", -1)
	dashes = strings.TrimSuffix(dashes, "-")
	dashes = strings.TrimPrefix(dashes, "-")
	return dashes
}

func ShaLike(str string) bool {
	regexExp := regexp.MustCompile(`^[a-f0-9]{40}$`)
	return regexExp.MatchString(str)
}

func ShortSha(sha string) string {
	if len(sha) < 7 {
		return sha
	}
	return sha[:7]
}

// LabelSafe lowers a string into the character set accepted by Cloud Run
// resource labels.
func LabelSafe(str string) string {
	str = strings.ToLower(str)
	str = strings.Replace(str, "/", "-", -1)
	str = regexp.MustCompile(`[^a-z0-9-_]`).ReplaceAllString(str, "-")
	str = strings.Trim(str, "-_")
	if len(str) > 63 {
		str = str[:63]
	}
	return str
}

func PathExists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	return false
}

func InCloudRun() bool {
	_, inCloudRun := os.LookupEnv("K_SERVICE")
	return inCloudRun
}

func OtelConfigPresent() bool {
	_, present := os.LookupEnv("OTEL_EXPORTER_OTLP_ENDPOINT")
	return present
}

func SetLogLevel() {
	if level, exists := os.LookupEnv("LOG_LEVEL"); exists {
		level = strings.ToLower(level)
		switch level {
		case "panic":
			zerolog.SetGlobalLevel(zerolog.PanicLevel)
		case "fatal":
			zerolog.SetGlobalLevel(zerolog.FatalLevel)
		case "error":
			zerolog.SetGlobalLevel(zerolog.ErrorLevel)
		case "warn":
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		case "info":
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		case "debug":
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		case "trace":
			zerolog.SetGlobalLevel(zerolog.TraceLevel)
		default:
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
		return
	}

	zerolog.SetGlobalLevel(zerolog.WarnLevel)
}
