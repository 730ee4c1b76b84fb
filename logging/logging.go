package logging

import (
	gomodlog "github.com/cyverse-de/go-mod/logging"
	"github.com/elucidare/tonewise/config"
	"github.com/sirupsen/logrus"
)

func GetLogger() *logrus.Entry {
	return gomodlog.Log.WithFields(logrus.Fields{"service": config.ServiceName})
}

func SetupLogging(level string) {
	gomodlog.SetupLogging(level)
}

// UserFields returns the log fields that identify a metered request.
func UserFields(userID, feature string) logrus.Fields {
	return logrus.Fields{"user": userID, "feature": feature}
}
