package mastersvc

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ZigmaSoftware/erp-final-backend/pkg/auth"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/postgres"
	"github.com/ZigmaSoftware/erp-final-backend/pkg/clients/redis"
	erperr "github.com/ZigmaSoftware/erp-final-backend/pkg/errors"
)

const userCacheKeyPrefix = "mastersvc:user:"

// DefaultUserCacheTTL bounds how stale a cached identity may get. Group
// membership changes take at most this long to reach the master service.
const DefaultUserCacheTTL = 5 * time.Minute

// identityCache is the cache surface used by the lookup. Satisfied by
// [redis.Client].
type identityCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
}

// cachedUser is the JSON shape stored in the cache.
type cachedUser struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// UserLookup resolves forwarded user ids against the shared user tables,
// with a redis read-through cache in front. It backs the trust resolver:
// a hit or a database row yields a local [auth.User]; a missing row makes
// the resolver fall back to the gateway-asserted identity.
type UserLookup struct {
	db     *postgres.Client
	cache  identityCache
	ttl    time.Duration
	logger *slog.Logger
	tracer trace.Tracer
}

// NewUserLookup creates a UserLookup. A nil cache disables caching and
// every lookup goes to the database.
func NewUserLookup(db *postgres.Client, cache identityCache, ttl time.Duration, logger *slog.Logger) *UserLookup {
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UserLookup{
		db:     db,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
		tracer: otel.Tracer("github.com/ZigmaSoftware/erp-final-backend/internal/mastersvc"),
	}
}

var _ auth.UserLookup = (*UserLookup)(nil)

// LookupUser implements [auth.UserLookup]. Cache failures are logged and
// treated as misses; only the database decides whether the user exists.
func (l *UserLookup) LookupUser(ctx context.Context, id string) (auth.Principal, error) {
	ctx, span := l.tracer.Start(ctx, "mastersvc.LookupUser",
		trace.WithAttributes(attribute.String("user.id", id)))
	defer span.End()

	if l.cache != nil {
		if cached, err := l.cache.Get(ctx, userCacheKeyPrefix+id); err == nil {
			var u cachedUser
			if err := json.Unmarshal([]byte(cached), &u); err == nil {
				span.SetAttributes(attribute.Bool("cache.hit", true))
				return auth.NewUser(u.ID, u.Username, u.Groups), nil
			}
			l.logger.WarnContext(ctx, "discarding malformed cached identity", "user_id", id)
		} else if !redis.IsCacheMiss(err) {
			l.logger.WarnContext(ctx, "identity cache read failed", "user_id", id, "error", err)
		}
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	u, err := l.loadUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		payload, err := json.Marshal(u)
		if err == nil {
			err = l.cache.Set(ctx, userCacheKeyPrefix+id, string(payload), l.ttl)
		}
		if err != nil {
			l.logger.WarnContext(ctx, "identity cache write failed", "user_id", id, "error", err)
		}
	}

	return auth.NewUser(u.ID, u.Username, u.Groups), nil
}

func (l *UserLookup) loadUser(ctx context.Context, id string) (cachedUser, error) {
	// Forwarded ids for local users are numeric. Anything else cannot
	// match a row, which the resolver treats as a remote identity.
	numericID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return cachedUser{}, erperr.New(erperr.CodeNotFoundUser, "user not found")
	}

	var u cachedUser
	u.ID = id

	err = l.db.QueryRow(ctx,
		"SELECT username FROM users WHERE id = $1 AND is_active = TRUE", numericID).
		Scan(&u.Username)
	if err != nil {
		if postgres.IsNoRows(err) {
			return cachedUser{}, erperr.New(erperr.CodeNotFoundUser, "user not found")
		}
		return cachedUser{}, erperr.Wrap(err, erperr.CodeInternalDatabase, "mastersvc: failed to load user")
	}

	rows, err := l.db.Query(ctx, `
		SELECT g.name
		FROM groups g
		JOIN user_groups ug ON ug.group_id = g.id
		WHERE ug.user_id = $1
		ORDER BY g.id`, numericID)
	if err != nil {
		return cachedUser{}, erperr.Wrap(err, erperr.CodeInternalDatabase, "mastersvc: failed to load user groups")
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return cachedUser{}, erperr.Wrap(err, erperr.CodeInternalDatabase, "mastersvc: failed to scan group")
		}
		u.Groups = append(u.Groups, name)
	}
	if err := rows.Err(); err != nil {
		return cachedUser{}, erperr.Wrap(err, erperr.CodeInternalDatabase, "mastersvc: failed to iterate groups")
	}

	return u, nil
}
