// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: Token issuer and lifetimes.
  - Messaging: Cache key prefixes and event subjects.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "comicvault"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 25 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// ReadinessTimeout bounds each dependency ping in /ready.
	ReadinessTimeout = 2 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the 'iss' claim of operator tokens.
	AuthIssuer = "comicvault"

	// DefaultAdminTokenTTL is the lifetime of tokens minted by catalogctl.
	DefaultAdminTokenTTL = 1 * time.Hour
)

// # Redis Prefixes (Cache Taxonomy)

const (
	// RedisPrefixComicPage namespaces cached query pages.
	RedisPrefixComicPage = "catalog:page:"

	// RedisKeyCatalogGeneration is bumped on every catalogue write.
	RedisKeyCatalogGeneration = "catalog:generation"
)

// # NATS Subjects

const (
	SubjectImportCompleted = "catalog.import.completed"
	SubjectStatusUpdated   = "catalog.status.updated"
)

// # Payload Limits

// MaxImportBodyBytes caps an admin import upload. Batches carry covers as
// data URIs, so they are far larger than ordinary request bodies.
const MaxImportBodyBytes = 64 << 20

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderAuthorization = "Authorization"
	HeaderRetryAfter    = "Retry-After"
)

// # JSON Field Identifiers

const (
	FieldStatus = "status"
	FieldChecks = "checks"
)
