package config

import "os"

func IsDebug() bool {
	return os.Getenv("ROLECAST_DEBUG") == "1"
}
