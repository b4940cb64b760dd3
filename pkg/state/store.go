// Package state persists the last-applied resource snapshot for a lab
// in Redis. Each resource becomes a hash at key
// "bgplab:<lab>:resource:<KIND>|<name>" holding the applied attributes
// plus provider outputs under an "out." field prefix; run metadata
// lives in "bgplab:<lab>:run". The snapshot backs the status and
// output commands and lets destroy clean up after a partial apply.
package state

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/bgplab-net/bgplab/pkg/graph"
	"github.com/bgplab-net/bgplab/pkg/provider"
	"github.com/bgplab-net/bgplab/pkg/util"
)

const outputPrefix = "out."

// Store is a redis-backed applied-state store scoped to one lab.
type Store struct {
	client *redis.Client
	lab    string
}

// New connects a store for the given lab. The connection is lazy;
// failures surface on first use.
func New(addr string, db int, lab string) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{Addr: addr, DB: db}),
		lab:    lab,
	}
}

// Close releases the redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) keyPrefix() string {
	return "bgplab:" + s.lab + ":"
}

func (s *Store) resourceKey(ref graph.Ref) string {
	return s.keyPrefix() + "resource:" + string(ref.Kind) + "|" + ref.Name
}

func (s *Store) runKey() string {
	return s.keyPrefix() + "run"
}

// RunInfo describes the last apply run.
type RunInfo struct {
	ID        string
	AppliedAt time.Time
}

// SaveSnapshot replaces the stored snapshot with the observed set from
// one run. Called even after a partial apply so destroy can clean up.
func (s *Store) SaveSnapshot(ctx context.Context, runID string, observed []*provider.Observed) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, obs := range observed {
		fields := make(map[string]interface{}, len(obs.Attrs)+len(obs.Outputs))
		for k, v := range obs.Attrs {
			fields[k] = v
		}
		for k, v := range obs.Outputs {
			fields[outputPrefix+k] = v
		}
		pipe.HSet(ctx, s.resourceKey(obs.Ref), fields)
	}
	pipe.HSet(ctx, s.runKey(), map[string]interface{}{
		"id":         runID,
		"applied_at": time.Now().UTC().Format(time.RFC3339),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("state: save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or ErrNotApplied if the
// lab has never been applied.
func (s *Store) LoadSnapshot(ctx context.Context) ([]*provider.Observed, error) {
	keys, err := s.scanKeys(ctx, s.keyPrefix()+"resource:*")
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("state: lab %s: %w", s.lab, util.ErrNotApplied)
	}

	var observed []*provider.Observed
	for _, key := range keys {
		fields, err := s.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("state: read %s: %w", key, err)
		}

		ref, err := parseResourceKey(strings.TrimPrefix(key, s.keyPrefix()+"resource:"))
		if err != nil {
			return nil, err
		}

		obs := &provider.Observed{
			Ref:     ref,
			Attrs:   make(map[string]string),
			Outputs: make(map[string]string),
		}
		for k, v := range fields {
			if strings.HasPrefix(k, outputPrefix) {
				obs.Outputs[strings.TrimPrefix(k, outputPrefix)] = v
			} else {
				obs.Attrs[k] = v
			}
		}
		observed = append(observed, obs)
	}
	return observed, nil
}

// Run returns metadata for the last apply run.
func (s *Store) Run(ctx context.Context) (*RunInfo, error) {
	fields, err := s.client.HGetAll(ctx, s.runKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("state: read run info: %w", err)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("state: lab %s: %w", s.lab, util.ErrNotApplied)
	}

	info := &RunInfo{ID: fields["id"]}
	if at, err := time.Parse(time.RFC3339, fields["applied_at"]); err == nil {
		info.AppliedAt = at
	}
	return info, nil
}

// Clear removes the lab's entire snapshot and run metadata.
func (s *Store) Clear(ctx context.Context) error {
	keys, err := s.scanKeys(ctx, s.keyPrefix()+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("state: clear: %w", err)
	}
	return nil
}

func (s *Store) scanKeys(ctx context.Context, match string) ([]string, error) {
	var keys []string
	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, match, 100).Result()
		if err != nil {
			return nil, fmt.Errorf("state: scan %s: %w", match, err)
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func parseResourceKey(suffix string) (graph.Ref, error) {
	parts := strings.SplitN(suffix, "|", 2)
	if len(parts) != 2 {
		return graph.Ref{}, fmt.Errorf("state: malformed resource key %q", suffix)
	}
	return graph.Ref{Kind: graph.Kind(parts[0]), Name: parts[1]}, nil
}
