package service

import (
	"context"
	"crypto/md5"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/dto"
	"github.com/promptmaster/api/pkg/circuit"
	"github.com/promptmaster/api/pkg/logger"
	"github.com/promptmaster/api/pkg/redis"
)

// CourseCache is a read-through cache for catalog pages and course details.
// Redis failures are logged and treated as misses; the breaker stops
// calling redis while it is down. A nil client disables caching.
type CourseCache struct {
	client  *redis.Client
	breaker *circuit.Breaker
	ttl     time.Duration
}

// cachedCourseList is one catalog page as stored in redis.
type cachedCourseList struct {
	Courses []dto.CourseResponse `json:"courses"`
	Total   int64                `json:"total"`
}

func NewCourseCache(client *redis.Client, breaker *circuit.Breaker, ttl time.Duration) *CourseCache {
	if breaker == nil {
		breaker = circuit.NewBreaker("redis", circuit.DefaultConfig(), logger.GetLogger())
	}
	return &CourseCache{client: client, breaker: breaker, ttl: ttl}
}

func (c *CourseCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Breaker exposes the breaker state for health reporting.
func (c *CourseCache) Breaker() *circuit.Breaker {
	if c == nil {
		return nil
	}
	return c.breaker
}

func courseKey(id uuid.UUID) string {
	return constants.CacheKeyCourse + id.String()
}

// courseListKey hashes the normalized filter so equal queries share a key.
func courseListKey(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	h := md5.New()
	for _, k := range keys {
		fmt.Fprintf(h, "%s=%s;", k, strings.ToLower(params[k]))
	}
	return fmt.Sprintf("%s%x", constants.CacheKeyCourseList, h.Sum(nil))
}

func (c *CourseCache) get(ctx context.Context, key string, dest any) bool {
	if !c.Enabled() {
		return false
	}

	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		found, err = c.client.GetJSON(ctx, key, dest)
		return err
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Course cache read failed").
			String("key", key).
			Err(err).
			Log()
		return false
	}
	return found
}

func (c *CourseCache) set(ctx context.Context, key string, value any) {
	if !c.Enabled() {
		return
	}

	err := c.breaker.Execute(func() error {
		return c.client.SetJSON(ctx, key, value, c.ttl)
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Course cache write failed").
			String("key", key).
			Err(err).
			Log()
	}
}

func (c *CourseCache) GetCourse(ctx context.Context, id uuid.UUID) (*dto.CourseResponse, bool) {
	var course dto.CourseResponse
	if !c.get(ctx, courseKey(id), &course) {
		return nil, false
	}
	return &course, true
}

func (c *CourseCache) SetCourse(ctx context.Context, course dto.CourseResponse) {
	c.set(ctx, courseKey(course.ID), course)
}

func (c *CourseCache) GetList(ctx context.Context, params map[string]string) ([]dto.CourseResponse, int64, bool) {
	var page cachedCourseList
	if !c.get(ctx, courseListKey(params), &page) {
		return nil, 0, false
	}
	return page.Courses, page.Total, true
}

func (c *CourseCache) SetList(ctx context.Context, params map[string]string, courses []dto.CourseResponse, total int64) {
	c.set(ctx, courseListKey(params), cachedCourseList{Courses: courses, Total: total})
}

// Invalidate drops the course detail and every cached catalog page.
func (c *CourseCache) Invalidate(ctx context.Context, id uuid.UUID) {
	if !c.Enabled() {
		return
	}

	err := c.breaker.Execute(func() error {
		if err := c.client.Delete(ctx, courseKey(id)); err != nil {
			return err
		}
		_, err := c.client.DeleteByPattern(ctx, constants.CacheKeyCourseList+"*")
		return err
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Course cache invalidation failed").
			String("course_id", id.String()).
			Err(err).
			Log()
	}
}
