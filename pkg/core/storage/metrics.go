package storage

import (
	"context"
	"io"

	"github.com/prometheus/client_golang/prometheus"
)

type instrumented struct {
	next  FileStore
	ops   *prometheus.CounterVec
	bytes prometheus.Counter
}

// WithMetrics counts operations and stored bytes of next on reg.
func WithMetrics(next FileStore, reg prometheus.Registerer) FileStore {
	s := &instrumented{
		next: next,
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "focus",
			Subsystem: "storage",
			Name:      "operations_total",
			Help:      "File store calls by operation and result",
		}, []string{"op", "result"}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "focus",
			Subsystem: "storage",
			Name:      "stored_bytes_total",
			Help:      "Bytes accepted by the file store",
		}),
	}
	if reg != nil {
		reg.MustRegister(s.ops, s.bytes)
	}
	return s
}

func (s *instrumented) observe(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	s.ops.WithLabelValues(op, result).Inc()
}

func (s *instrumented) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	err := s.next.Put(ctx, key, body, size, contentType)
	s.observe("put", err)
	if err == nil && size > 0 {
		s.bytes.Add(float64(size))
	}
	return err
}

func (s *instrumented) Get(ctx context.Context, key string) (*FileObject, error) {
	obj, err := s.next.Get(ctx, key)
	s.observe("get", err)
	return obj, err
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	s.observe("delete", err)
	return err
}
