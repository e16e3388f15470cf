package authcore

import (
	"errors"
	"time"

	"github.com/polylab/authcore/password"
)

// Config carries every tunable of the engine. Zero value is not usable;
// start from [DefaultConfig] and override what you need.
type Config struct {
	Session   SessionConfig
	Password  PasswordConfig
	TOTP      TOTPConfig
	Tokens    TokenConfig
	RateLimit RateLimitConfig
	Cookies   CookieConfig
	Security  SecurityConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
SESSION CONFIG
====================================
*/

type SessionConfig struct {
	RedisPrefix string
	TTL         time.Duration
}

/*
====================================
PASSWORD CONFIG
====================================
*/

type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	Policy      password.Policy
}

/*
====================================
TOTP CONFIG
====================================
*/

type TOTPConfig struct {
	Issuer    string
	Digits    int
	Period    int
	Algorithm string // "SHA1" (default), "SHA256", "SHA512"
	Skew      int
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig holds lifetimes for the three single-use token purposes.
type TokenConfig struct {
	RedisPrefix string
	VerifyTTL   time.Duration
	ResetTTL    time.Duration
	MFATTL      time.Duration
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

type RateLimitConfig struct {
	Enabled bool
	Window  time.Duration
	Limit   int
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig names the cookies the HTTP layer writes. The session cookie is
// HttpOnly; the CSRF cookie must stay readable by frontend scripts.
type CookieConfig struct {
	SessionName string
	CSRFName    string
	Path        string
}

type SecurityConfig struct {
	// Debug disables the Secure cookie attribute and HSTS for plain-HTTP
	// development setups.
	Debug          bool
	EnableHSTS     bool
	FrontendOrigin string
}

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			RedisPrefix: "sess",
			TTL:         2 * time.Hour,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			Policy:      password.DefaultPolicy(),
		},
		TOTP: TOTPConfig{
			Issuer:    "authcore",
			Digits:    6,
			Period:    30,
			Algorithm: "SHA1",
			Skew:      1,
		},
		Tokens: TokenConfig{
			RedisPrefix: "act",
			VerifyTTL:   24 * time.Hour,
			ResetTTL:    30 * time.Minute,
			MFATTL:      10 * time.Minute,
		},
		RateLimit: RateLimitConfig{
			Enabled: true,
			Window:  time.Minute,
			Limit:   120,
		},
		Cookies: CookieConfig{
			SessionName: "session_id",
			CSRFName:    "csrf_token",
			Path:        "/",
		},
		Security: SecurityConfig{
			Debug:      false,
			EnableHSTS: false,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the production baseline configuration.
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate rejects configurations that would produce an insecure or
// non-functional engine.
func (c *Config) Validate() error {
	if c.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("session redis prefix required")
	}
	if c.Password.Memory < 8*1024 {
		return errors.New("argon2 memory below 8 MB")
	}
	if c.Password.Time == 0 || c.Password.Parallelism == 0 {
		return errors.New("argon2 time and parallelism must be positive")
	}
	if c.Password.SaltLength < 8 || c.Password.KeyLength < 16 {
		return errors.New("argon2 salt/key length too small")
	}
	if c.Password.Policy.MinLength <= 0 || c.Password.Policy.MaxLength < c.Password.Policy.MinLength {
		return errors.New("invalid password length bounds")
	}
	if c.TOTP.Digits < 6 || c.TOTP.Digits > 8 {
		return errors.New("totp digits must be 6..8")
	}
	if c.TOTP.Period <= 0 {
		return errors.New("totp period must be positive")
	}
	if c.TOTP.Skew < 0 || c.TOTP.Skew > 2 {
		return errors.New("totp skew must be 0..2")
	}
	if c.Tokens.VerifyTTL <= 0 || c.Tokens.ResetTTL <= 0 || c.Tokens.MFATTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.RateLimit.Enabled && (c.RateLimit.Window <= 0 || c.RateLimit.Limit <= 0) {
		return errors.New("rate limit window and limit must be positive")
	}
	if c.Cookies.SessionName == "" || c.Cookies.CSRFName == "" {
		return errors.New("cookie names required")
	}
	if c.Cookies.SessionName == c.Cookies.CSRFName {
		return errors.New("session and csrf cookies must differ")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a deep copy.
	return cfg
}
