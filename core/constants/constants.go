package constants

import "time"

// HTTP
const (
	HeaderAuthToken = "Auth-Token"
	HeaderRealIP    = "X-Real-Ip"
)

// Echo context keys
const (
	ContextTokenData = "token_data"
)

// Modules that can be mounted by the server
const (
	ModuleAuth        = "auth"
	ModuleEvent       = "event"
	ModuleCheckin     = "checkin"
	ModuleParticipant = "participant"
	ModuleArticle     = "article"
)

// Articles
const (
	ArticleSummaryLength = 200
)

// Timeouts
const (
	DefaultTimeout         = 10 * time.Second
	ShutdownTimeout        = 15 * time.Second
	HealthCheckTimeout     = 2 * time.Second
	VerificationTimeout    = 5 * time.Second
	DefaultTokenLifespan   = 1800 * time.Second
	DefaultPingInterval    = 25 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultLoginBlock      = 15 * time.Minute
	DefaultLoginMaxAttempt = 5
)

// Database
const (
	DatabaseSSLMode         = "disable"
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
)

// Redis
const (
	RedisKeyLoginAttempt   = "coordinator:login:"
	RedisChannelCheckins   = "coordinator:checkins"
	DefaultSubscriberQueue = 64
)

// Check-in messaging
const (
	TopicCheckins       = "/topic/checkins"
	DestinationUpdate   = "/update"
	CheckinWebsocketURI = "/checkin/ws"
)
