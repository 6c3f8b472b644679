package log

import (
	"os"
	"path/filepath"

	"github.com/epihealth/epi-app/conf"
	"github.com/sirupsen/logrus"
)

var (
	API        logrus.FieldLogger
	Request    logrus.FieldLogger
	Classifier logrus.FieldLogger
)

func init() {
	SetupLoggers()
}

// SetupLoggers (re)builds the package-level loggers from the current conf
// values. Called once at init; tests call it again after changing the log
// file locations.
func SetupLoggers() {
	API = Logger(logrus.New(), conf.GetEnv("EPI_ERROR_LOG"),
		"api", conf.GetEnv("DEPLOYMENT_TARGET"))
	Request = Logger(logrus.New(), conf.GetEnv("EPI_REQUEST_LOG"),
		"api", conf.GetEnv("DEPLOYMENT_TARGET"))
	Classifier = Logger(logrus.New(), conf.GetEnv("EPI_CLASSIFIER_LOG"),
		"api", conf.GetEnv("DEPLOYMENT_TARGET"))
}

func Logger(logger *logrus.Logger, outputFile string,
	application, environment string) logrus.FieldLogger {

	logger.SetFormatter(&logrus.JSONFormatter{})

	if outputFile != "" {
		if file, err := os.OpenFile(filepath.Clean(outputFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
			logger.SetOutput(file)
		} else {
			logger.Infof("Failed to open output file %s. Will use stderr. %s",
				outputFile, err.Error())
		}
	}

	return logger.WithFields(logrus.Fields{
		"application": application,
		"environment": environment})
}
