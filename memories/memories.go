package memories

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/hupe1980/membox/batch"
	"github.com/hupe1980/membox/core"
	"github.com/hupe1980/membox/logging"
	"github.com/hupe1980/membox/stream"
	"github.com/hupe1980/membox/transport"
)

const batchIDHeader = "X-Batch-ID"

// Service is the memories resource client.
type Service struct {
	tr     *transport.Client
	logger logging.Logger
}

// New creates a memories service over the shared transport.
func New(tr *transport.Client, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &Service{tr: tr, logger: logger}
}

// Put stores (or replaces) a memory under its key.
func (s *Service) Put(ctx context.Context, mem core.Memory) error {
	if mem.Key == "" {
		return &transport.RequestError{Cause: errors.New("memory key must not be empty")}
	}
	_, err := s.tr.Request(ctx, http.MethodPut, "/v1/memories/"+url.PathEscape(mem.Key), &transport.RequestOptions{
		Body: mem,
	})
	return err
}

// Get fetches one memory by key.
func (s *Service) Get(ctx context.Context, key string) (core.Memory, error) {
	return transport.Do[core.Memory](ctx, s.tr, http.MethodGet, "/v1/memories/"+url.PathEscape(key), nil)
}

// Delete removes a memory. Deleting a key that is already gone is a success:
// the end state is what the caller asked for.
func (s *Service) Delete(ctx context.Context, key string) error {
	_, err := s.tr.Request(ctx, http.MethodDelete, "/v1/memories/"+url.PathEscape(key), nil)
	var he *transport.HTTPError
	if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
		s.logger.Debug("membox delete: key already gone", "key", key)
		return nil
	}
	return err
}

// ListKeys opens a lazy NDJSON stream of key records. The caller owns the
// decoder and must drain it or call Close.
func (s *Service) ListKeys(ctx context.Context) (*stream.Decoder[core.KeyRecord], error) {
	resp, err := s.tr.RequestStream(ctx, http.MethodGet, "/v1/memories/keys", nil)
	if err != nil {
		return nil, err
	}
	return stream.NewDecoder[core.KeyRecord](resp.Body), nil
}

// PutAll stores many memories, aggregating per-key outcomes. Items that fail
// do not roll back their siblings.
func (s *Service) PutAll(ctx context.Context, mems []core.Memory, optFns ...func(*batch.Config)) *batch.Result[struct{}] {
	cid := uuid.NewString()
	ops := make([]batch.Operation[struct{}], len(mems))
	for i, mem := range mems {
		ops[i] = batch.Operation[struct{}]{
			Key: mem.Key,
			Run: func(ctx context.Context) (struct{}, error) {
				err := s.put(ctx, mem, cid)
				return struct{}{}, err
			},
		}
	}
	return s.run(ctx, cid, ops, optFns)
}

// GetAll fetches many memories by key.
func (s *Service) GetAll(ctx context.Context, keys []string, optFns ...func(*batch.Config)) *batch.Result[core.Memory] {
	cid := uuid.NewString()
	ops := make([]batch.Operation[core.Memory], len(keys))
	for i, key := range keys {
		ops[i] = batch.Operation[core.Memory]{
			Key: key,
			Run: func(ctx context.Context) (core.Memory, error) {
				return transport.Do[core.Memory](ctx, s.tr, http.MethodGet,
					"/v1/memories/"+url.PathEscape(key), &transport.RequestOptions{
						Headers: http.Header{batchIDHeader: {cid}},
					})
			},
		}
	}
	return run(ctx, s, cid, ops, optFns)
}

// DeleteAll removes many memories by key with the same already-gone
// idempotence as Delete.
func (s *Service) DeleteAll(ctx context.Context, keys []string, optFns ...func(*batch.Config)) *batch.Result[struct{}] {
	cid := uuid.NewString()
	ops := make([]batch.Operation[struct{}], len(keys))
	for i, key := range keys {
		ops[i] = batch.Operation[struct{}]{
			Key: key,
			Run: func(ctx context.Context) (struct{}, error) {
				_, err := s.tr.Request(ctx, http.MethodDelete, "/v1/memories/"+url.PathEscape(key),
					&transport.RequestOptions{Headers: http.Header{batchIDHeader: {cid}}})
				var he *transport.HTTPError
				if errors.As(err, &he) && he.StatusCode == http.StatusNotFound {
					err = nil
				}
				return struct{}{}, err
			},
		}
	}
	return s.run(ctx, cid, ops, optFns)
}

func (s *Service) put(ctx context.Context, mem core.Memory, correlationID string) error {
	if mem.Key == "" {
		return &transport.RequestError{Cause: errors.New("memory key must not be empty")}
	}
	_, err := s.tr.Request(ctx, http.MethodPut, "/v1/memories/"+url.PathEscape(mem.Key), &transport.RequestOptions{
		Body:    mem,
		Headers: http.Header{batchIDHeader: {correlationID}},
	})
	return err
}

func (s *Service) run(ctx context.Context, cid string, ops []batch.Operation[struct{}], optFns []func(*batch.Config)) *batch.Result[struct{}] {
	return run(ctx, s, cid, ops, optFns)
}

func run[T any](ctx context.Context, s *Service, cid string, ops []batch.Operation[T], optFns []func(*batch.Config)) *batch.Result[T] {
	optFns = append([]func(*batch.Config){batch.WithCorrelationID(cid), batch.WithMaxParallel(4)}, optFns...)
	res := batch.Run(ctx, ops, optFns...)
	if !res.OK() {
		s.logger.Warn("membox batch completed with failures",
			"correlation_id", res.CorrelationID, "successes", res.Successes, "failures", len(res.Failures))
	}
	return res
}
