package instance

import "os"

// GetID returns the consumer instance identifier or a default value.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "consumer-0"
}
