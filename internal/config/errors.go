package config

const (
	// Database errors
	ErrInitializeDatabaseFmt = "Failed to initialize database: %v"

	// HTTP errors
	ErrInternalServerError = "Internal server error"

	// Cache errors
	ErrOpenPageCache = "Failed to open page cache"

	// Config errors
	ErrLoadConfig = "Failed to load config"
)
