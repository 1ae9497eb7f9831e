package config // package config loads application configuration from environment variables

import (
    "log"      // log is used to report configuration errors and halt execution
    "os"       // os provides access to environment variables
    "strconv"  // strconv converts strings to other types
    "time"     // time expresses the receipt retry delay
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs, and a Duration for the receipt retry spacing.
type Config struct {
    Env            string // application environment (e.g. "dev", "prod")
    Port           string // HTTP port to listen on
    DBUser         string // database username
    DBPass         string // database password (optional)
    DBHost         string // database host address
    DBPort         string // database port number
    DBName         string // database name
    DBSSLMode      string // Postgres sslmode (defaults to "disable")
    JWTSecret      string // secret used to sign JWTs
    AccessTTLMin   int    // access token time‑to‑live in minutes
    RefreshTTLDays int    // refresh token time‑to‑live in days
    BcryptCost     int    // bcrypt cost for password hashing

    // Receipt lookup retry budget.  The indexed event feed is eventually
    // consistent relative to chain settlement, so a confirm request waits
    // up to ReceiptRetryDelay × ReceiptRetryAttempts for the row to appear.
    ReceiptRetryAttempts int           // maximum lookup attempts
    ReceiptRetryDelay    time.Duration // fixed delay between attempts
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The retry budget
// defaults to 10 attempts spaced 500ms apart.
func Load() Config {
    return Config{
        Env:            must("APP_ENV"),             // environment (dev/test/prod)
        Port:           must("APP_PORT"),            // port to bind the HTTP server
        DBUser:         must("DB_USER"),             // database user
        DBPass:         os.Getenv("DB_PASS"),        // database password (empty allowed)
        DBHost:         must("DB_HOST"),             // database host
        DBPort:         must("DB_PORT"),             // database port
        DBName:         must("DB_NAME"),             // database name
        DBSSLMode:      os.Getenv("DB_SSLMODE"),     // sslmode (empty -> disable)
        JWTSecret:      must("JWT_SECRET"),          // secret used for signing JWTs
        AccessTTLMin:   mustInt("ACCESS_TOKEN_TTL_MIN"),   // TTL for access tokens in minutes
        RefreshTTLDays: mustInt("REFRESH_TOKEN_TTL_DAYS"), // TTL for refresh tokens in days
        BcryptCost:     mustInt("BCRYPT_COST"),      // bcrypt cost factor

        ReceiptRetryAttempts: intDefault("RECEIPT_RETRY_ATTEMPTS", 10),
        ReceiptRetryDelay:    msDefault("RECEIPT_RETRY_DELAY_MS", 500*time.Millisecond),
    }
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
    s := must(key)
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}

// intDefault reads an optional integer variable, falling back to def when
// the variable is unset or malformed.
func intDefault(key string, def int) int {
    if s := os.Getenv(key); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n > 0 {
            return n
        }
        log.Printf("config: ignoring invalid %s=%q, using %d", key, os.Getenv(key), def)
    }
    return def
}

// msDefault reads an optional millisecond count, falling back to def.
func msDefault(key string, def time.Duration) time.Duration {
    if s := os.Getenv(key); s != "" {
        if n, err := strconv.Atoi(s); err == nil && n > 0 {
            return time.Duration(n) * time.Millisecond
        }
        log.Printf("config: ignoring invalid %s=%q, using %s", key, os.Getenv(key), def)
    }
    return def
}
