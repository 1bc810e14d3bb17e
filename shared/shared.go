package shared

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hostel/shared/cache"
	"hostel/shared/constant"
	"hostel/shared/dto"
	"hostel/shared/timezone"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const cacheKeySeparator = ":"

// BuildCacheKey joins the parts into one redis key.
func BuildCacheKey(prefix string, parts ...any) string {
	segments := make([]string, 0, len(parts)+1)
	segments = append(segments, prefix)

	for _, part := range parts {
		segments = append(segments, fmt.Sprint(part))
	}

	return strings.Join(segments, cacheKeySeparator)
}

// BuildCacheKeyWithQuery derives a stable key for a listing from its paging and filter.
func BuildCacheKeyWithQuery(prefix string, params dto.QueryParams, filter dto.FilterGroup) string {
	where, args := filter.GetWhereClause()

	raw, err := json.Marshal(struct {
		Params dto.QueryParams `json:"p"`
		Where  string          `json:"w"`
		Args   map[string]any  `json:"a"`
	}{params, where, args})
	if err != nil {
		log.Error().Err(err).Str("prefix", prefix).Msg("failed to marshal cache key query")

		return BuildCacheKey(prefix, params.Page, params.Limit, params.SortBy, params.SortDir)
	}

	sum := sha256.Sum256(raw)

	return BuildCacheKey(prefix, hex.EncodeToString(sum[:8]))
}

// CacheVersion reads the generation under key. ok is false when it cannot be
// read and the caller must bypass the cache.
func CacheVersion(ctx context.Context, redisCache cache.RedisCache, key string) (version int64, ok bool) {
	version, err := redisCache.Version(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("failed to read cache version, bypassing cache")

		return 0, false
	}

	return version, true
}

// BumpCacheVersions retires every key built on the given generations.
// Failures are logged only.
func BumpCacheVersions(ctx context.Context, redisCache cache.RedisCache, keys ...string) {
	for _, key := range keys {
		if err := redisCache.Bump(ctx, key); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to bump cache version")
		}
	}
}

// RoomVersionKey is the generation counter of one room.
func RoomVersionKey(floor, room int) string {
	return BuildCacheKey(constant.CacheVersionRoom, floor, room)
}

// Actor names whoever is behind ctx for created_by/modified_by columns.
func Actor(ctx context.Context) string {
	if username, ok := ctx.Value(constant.ContextKeyUsername).(string); ok && username != "" {
		return username
	}

	return constant.ActorGuest
}

// UserID returns the authenticated user id carried by ctx, if any.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(constant.ContextKeyUserID).(string)

	return id, ok && id != ""
}

func ConvertStringToInt(value string) (int, bool) {
	if value == "" {
		return 0, false
	}

	intValue, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		log.Debug().Err(err).Str("value", value).Msg("failed to convert string to int")

		return 0, false
	}

	return intValue, true
}

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

// TransformFields converts the non-zero db tagged fields of a struct into an update map
// and stamps it with the modifier.
func TransformFields(data any, username string) map[string]any {
	val := reflect.ValueOf(data)
	typ := reflect.TypeOf(data)

	updatedFields := make(map[string]any)

	for index := range val.NumField() {
		field := val.Field(index)
		if field.IsZero() {
			continue
		}

		fieldName := typ.Field(index).Tag.Get("db")
		if fieldName == "" || fieldName == "-" {
			continue
		}

		updatedFields[fieldName] = field.Interface()
	}

	updatedFields[constant.FieldModifiedAt] = timezone.Now()
	updatedFields[constant.FieldModifiedBy] = username

	return updatedFields
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Eq(table, fieldID, id),
		},
	}
}
