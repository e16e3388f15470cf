package authcore

import (
	"errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	internalaudit "github.com/polylab/authcore/internal/audit"
	"github.com/polylab/authcore/internal/rate"
	"github.com/polylab/authcore/internal/tokens"
	"github.com/polylab/authcore/logging"
	"github.com/polylab/authcore/password"
	"github.com/polylab/authcore/session"
)

// Builder assembles an [Engine]. Configure it with the With* methods and call
// [Builder.Build] exactly once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	accounts  AccountStore
	mailer    Mailer
	log       logging.Logger
	auditSink AuditSink

	built bool
}

// New returns a Builder preloaded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithAccounts(store AccountStore) *Builder {
	b.accounts = store
	return b
}

func (b *Builder) WithMailer(m Mailer) *Builder {
	b.mailer = m
	return b
}

func (b *Builder) WithLogger(l logging.Logger) *Builder {
	b.log = l
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration, wires all subsystems, and returns a
// ready Engine. The Builder cannot be reused afterwards.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.accounts == nil {
		return nil, errors.New("account store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if b.mailer == nil {
		b.mailer = NopMailer{}
	}
	if b.log == nil {
		b.log = logging.Nop{}
	}

	engine := &Engine{
		config:   cfg,
		accounts: b.accounts,
		mailer:   b.mailer,
		log:      b.log,
	}

	// -------- SESSION STORE --------
	engine.sessions = session.NewStore(b.redis, cfg.Session.RedisPrefix)

	// -------- TOKEN STORE --------
	engine.tokens = tokens.NewStore(b.redis, cfg.Tokens.RedisPrefix)

	// -------- RATE LIMITER --------
	if cfg.RateLimit.Enabled {
		engine.limiter = rate.New(rate.Config{
			Window: cfg.RateLimit.Window,
			Limit:  cfg.RateLimit.Limit,
		})
	}

	// -------- AUDIT / METRICS --------
	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	// -------- CRYPTO --------
	ph, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}
	engine.hasher = ph
	engine.policy = cfg.Password.Policy

	dummy, err := ph.Hash(uuid.NewString())
	if err != nil {
		return nil, err
	}
	engine.dummyHash = dummy
	engine.totp = newTOTPManager(cfg.TOTP)

	b.built = true

	return engine, nil
}
