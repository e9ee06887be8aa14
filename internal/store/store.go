package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"wellbeing-insights-go/internal/logger"
)

// Table names. Records live as JSON documents under "<table>:<id>" keys
// so a cursor scan over "<table>:*" plays the role of a table scan.
const (
	TableSurvey      = "Survey_Response"
	TableEmployees   = "Employees"
	TableWorkload    = "Employee_Workload"
	TableDepartments = "Departments"
	TableActions     = "Actions_Log"
	TableTasks       = "Upload_Tasks"
)

// scanCount is the per-page hint for SCAN; results stay correct for any
// value because FetchAll loops until the cursor comes back zero.
const scanCount = 200

var ErrNotFound = errors.New("record not found")

type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

type Store struct {
	rdb *redis.Client
	log *logrus.Entry
}

func New(cfg Config, lg *logger.Logger) (*Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return NewWithClient(rdb, lg), nil
}

// NewWithClient wraps an already-connected client.
func NewWithClient(rdb *redis.Client, lg *logger.Logger) *Store {
	return &Store{rdb: rdb, log: lg.Component("store")}
}

func key(table, id string) string {
	return table + ":" + id
}

// Put writes one record as a JSON document.
func (s *Store) Put(ctx context.Context, table, id string, doc interface{}) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", table, id, err)
	}
	if err := s.rdb.Set(ctx, key(table, id), data, 0).Err(); err != nil {
		return fmt.Errorf("set %s/%s: %w", table, id, err)
	}
	return nil
}

// Get loads one record into dst.
func (s *Store) Get(ctx context.Context, table, id string, dst interface{}) error {
	data, err := s.rdb.Get(ctx, key(table, id)).Bytes()
	if err == redis.Nil {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s/%s: %w", table, id, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s/%s: %w", table, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table, id string) error {
	if err := s.rdb.Del(ctx, key(table, id)).Err(); err != nil {
		return fmt.Errorf("del %s/%s: %w", table, id, err)
	}
	return nil
}

// FetchPage returns one scan page of decoded documents plus the cursor
// for the next page; a zero next cursor means the scan is complete.
func (s *Store) FetchPage(ctx context.Context, table string, cursor uint64) ([]map[string]interface{}, uint64, error) {
	keys, next, err := s.rdb.Scan(ctx, cursor, table+":*", scanCount).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("scan %s: %w", table, err)
	}

	var docs []map[string]interface{}
	if len(keys) > 0 {
		vals, err := s.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, 0, fmt.Errorf("mget %s: %w", table, err)
		}
		for i, v := range vals {
			raw, ok := v.(string)
			if !ok {
				continue // expired between SCAN and MGET
			}
			var doc map[string]interface{}
			if err := json.Unmarshal([]byte(raw), &doc); err != nil {
				s.log.WithField("key", keys[i]).WithError(err).Warn("skipping undecodable record")
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs, next, nil
}

// FetchAll scans the whole table, following the cursor until exhausted.
func (s *Store) FetchAll(ctx context.Context, table string) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	var cursor uint64
	for {
		docs, next, err := s.FetchPage(ctx, table, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	s.log.WithFields(logrus.Fields{"table": table, "records": len(out)}).Debug("table scan complete")
	return out, nil
}

// Peek returns up to limit records without walking the full table.
func (s *Store) Peek(ctx context.Context, table string, limit int) ([]map[string]interface{}, error) {
	var out []map[string]interface{}
	var cursor uint64
	for {
		docs, next, err := s.FetchPage(ctx, table, cursor)
		if err != nil {
			return nil, err
		}
		out = append(out, docs...)
		cursor = next
		if cursor == 0 || len(out) >= limit {
			break
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
