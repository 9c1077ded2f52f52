package config

import "os"

func IsDebug() bool {
	return os.Getenv("SAKHI_DEBUG") == "1"
}

// IsLogJSON is read before any config struct is parsed, since parsing itself logs.
func IsLogJSON() bool {
	return os.Getenv("SAKHI_LOG_JSON") == "true"
}
