// Package pinecone implements ragdoc.IndexService on a Pinecone serverless
// index using the go-pinecone SDK.
package pinecone

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fwojciec/ragdoc"
	sdk "github.com/pinecone-io/go-pinecone/v3/pinecone"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Polling settings for a newly created index.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultReadyTimeout = 5 * time.Minute
)

// Pinecone rejects upsert requests above 2 MB or 1000 records.
const (
	MaxUpsertBytes   = 2 << 20
	MaxUpsertRecords = 1000
)

// vectorOverhead approximates the per-record framing of an upsert request.
const vectorOverhead = 32

// ControlPlane manages indexes. *sdk.Client implements it.
type ControlPlane interface {
	DescribeIndex(ctx context.Context, idxName string) (*sdk.Index, error)
	CreateServerlessIndex(ctx context.Context, in *sdk.CreateServerlessIndexRequest) (*sdk.Index, error)
}

// DataPlane reads and writes the vectors of one index namespace.
// *sdk.IndexConnection implements it.
type DataPlane interface {
	UpsertVectors(ctx context.Context, in []*sdk.Vector) (uint32, error)
	QueryByVectorValues(ctx context.Context, in *sdk.QueryByVectorValuesRequest) (*sdk.QueryVectorsResponse, error)
	Close() error
}

// Connector opens a DataPlane for a namespace on an index host.
type Connector func(host, namespace string) (DataPlane, error)

// Compile-time interface verification.
var (
	_ ragdoc.IndexService = (*IndexService)(nil)
	_ ControlPlane        = (*sdk.Client)(nil)
	_ DataPlane           = (*sdk.IndexConnection)(nil)
)

// IndexService stores chunk vectors in Pinecone. Index hosts and namespace
// connections are cached for the life of the service.
type IndexService struct {
	control      ControlPlane
	connect      Connector
	maxBytes     int
	pollInterval time.Duration
	readyTimeout time.Duration

	mu    sync.Mutex
	hosts map[string]string
	conns map[string]DataPlane
}

// Option configures an IndexService.
type Option func(*IndexService)

// WithControlPlane replaces the SDK client used to manage indexes.
func WithControlPlane(cp ControlPlane) Option {
	return func(s *IndexService) {
		s.control = cp
	}
}

// WithConnector replaces how namespace connections are opened.
func WithConnector(fn Connector) Option {
	return func(s *IndexService) {
		s.connect = fn
	}
}

// WithMaxUpsertBytes lowers the request size upserts are split at.
func WithMaxUpsertBytes(n int) Option {
	return func(s *IndexService) {
		s.maxBytes = n
	}
}

// WithPollInterval sets how often CreateIndex checks whether a new index
// is ready.
func WithPollInterval(d time.Duration) Option {
	return func(s *IndexService) {
		s.pollInterval = d
	}
}

// WithReadyTimeout bounds how long CreateIndex waits for a new index.
func WithReadyTimeout(d time.Duration) Option {
	return func(s *IndexService) {
		s.readyTimeout = d
	}
}

// NewIndexService creates an IndexService authenticated with apiKey.
// httpClient, if set, carries control plane requests.
func NewIndexService(apiKey string, httpClient *http.Client, opts ...Option) (*IndexService, error) {
	s := &IndexService{
		maxBytes:     MaxUpsertBytes,
		pollInterval: DefaultPollInterval,
		readyTimeout: DefaultReadyTimeout,
		hosts:        make(map[string]string),
		conns:        make(map[string]DataPlane),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.control == nil || s.connect == nil {
		if apiKey == "" {
			return nil, ragdoc.Errorf(ragdoc.ECONFIG, "PINECONE_API_KEY is not set")
		}
		client, err := sdk.NewClient(sdk.NewClientParams{ApiKey: apiKey, RestClient: httpClient})
		if err != nil {
			return nil, ragdoc.Errorf(ragdoc.ECONFIG, "pinecone client: %v", err)
		}
		if s.control == nil {
			s.control = client
		}
		if s.connect == nil {
			s.connect = func(host, namespace string) (DataPlane, error) {
				return client.Index(sdk.NewIndexConnParams{Host: host, Namespace: namespace})
			}
		}
	}
	return s, nil
}

// Close closes every open namespace connection.
func (s *IndexService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for key, conn := range s.conns {
		errs = append(errs, conn.Close())
		delete(s.conns, key)
	}
	return errors.Join(errs...)
}

// IndexExists reports whether the named index exists.
func (s *IndexService) IndexExists(ctx context.Context, name string) (bool, error) {
	_, err := s.describe(ctx, name)
	if ragdoc.ErrorCode(err) == ragdoc.ENOTFOUND {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// DescribeIndex returns the spec of the named index.
func (s *IndexService) DescribeIndex(ctx context.Context, name string) (*ragdoc.IndexSpec, error) {
	idx, err := s.describe(ctx, name)
	if err != nil {
		return nil, err
	}

	spec := &ragdoc.IndexSpec{Name: idx.Name, Metric: ragdoc.Metric(idx.Metric)}
	if idx.Dimension != nil {
		spec.Dimension = int(*idx.Dimension)
	}
	if idx.Spec != nil && idx.Spec.Serverless != nil {
		spec.Cloud = string(idx.Spec.Serverless.Cloud)
		spec.Region = idx.Spec.Serverless.Region
	}
	return spec, nil
}

// CreateIndex creates a serverless index and waits until it is ready.
func (s *IndexService) CreateIndex(ctx context.Context, spec ragdoc.IndexSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	dimension := int32(spec.Dimension)
	metric := sdk.IndexMetric(spec.Metric)
	_, err := s.control.CreateServerlessIndex(ctx, &sdk.CreateServerlessIndexRequest{
		Name:      spec.Name,
		Cloud:     sdk.Cloud(spec.Cloud),
		Region:    spec.Region,
		Dimension: &dimension,
		Metric:    &metric,
	})
	if err != nil {
		return mapError(ctx, "create index "+spec.Name, err)
	}

	return s.waitReady(ctx, spec.Name)
}

func (s *IndexService) waitReady(ctx context.Context, name string) error {
	ctx, cancel := context.WithTimeout(ctx, s.readyTimeout)
	defer cancel()

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		idx, err := s.describe(ctx, name)
		if err != nil && ragdoc.ErrorCode(err) != ragdoc.ENOTFOUND {
			return err
		}
		if idx != nil && idx.Status != nil && idx.Status.Ready {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for index %s: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

func (s *IndexService) describe(ctx context.Context, name string) (*sdk.Index, error) {
	idx, err := s.control.DescribeIndex(ctx, name)
	if err != nil {
		return nil, mapError(ctx, "describe index "+name, err)
	}
	if idx.Host != "" {
		s.mu.Lock()
		s.hosts[name] = idx.Host
		s.mu.Unlock()
	}
	return idx, nil
}

// conn returns the cached connection to a namespace of the index,
// describing the index on first use to learn its host.
func (s *IndexService) conn(ctx context.Context, index, namespace string) (DataPlane, error) {
	s.mu.Lock()
	host, ok := s.hosts[index]
	s.mu.Unlock()
	if !ok {
		idx, err := s.describe(ctx, index)
		if err != nil {
			return nil, err
		}
		if idx.Host == "" {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "index %s has no host", index)
		}
		host = idx.Host
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := host + "/" + namespace
	if c, ok := s.conns[key]; ok {
		return c, nil
	}
	c, err := s.connect(host, namespace)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EFETCH, "connect to index %s: %v", index, err)
	}
	s.conns[key] = c
	return c, nil
}

// Upsert writes entries to the namespace. Pinecone replaces vectors whose
// ID already exists. Entries are sent in order, split into requests that
// stay within MaxUpsertRecords and the byte limit.
func (s *IndexService) Upsert(ctx context.Context, index, namespace string, entries []ragdoc.IndexEntry) error {
	if len(entries) == 0 {
		return nil
	}
	conn, err := s.conn(ctx, index, namespace)
	if err != nil {
		return err
	}

	vectors := make([]*sdk.Vector, len(entries))
	for i, e := range entries {
		v, err := toVector(e)
		if err != nil {
			return err
		}
		vectors[i] = v
	}

	for _, batch := range SplitUpsert(vectors, s.maxBytes, MaxUpsertRecords) {
		n, err := conn.UpsertVectors(ctx, batch)
		if err != nil {
			return mapError(ctx, "upsert to "+index, err)
		}
		if int(n) != len(batch) {
			return ragdoc.Errorf(ragdoc.EINTERNAL, "upserted %d of %d vectors", n, len(batch))
		}
	}
	return nil
}

func toVector(e ragdoc.IndexEntry) (*sdk.Vector, error) {
	md, err := structpb.NewStruct(map[string]any{
		"source":       e.Metadata.Source,
		"chunk_index":  e.Metadata.ChunkIndex,
		"text":         e.Metadata.Text,
		"content_hash": e.Metadata.ContentHash,
	})
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "metadata for %s: %v", e.ID, err)
	}
	values := e.Values
	return &sdk.Vector{Id: e.ID, Values: &values, Metadata: md}, nil
}

// VectorSize estimates the encoded size of v in an upsert request.
func VectorSize(v *sdk.Vector) int {
	n := len(v.Id) + vectorOverhead
	if v.Values != nil {
		n += 4 * len(*v.Values)
	}
	if v.Metadata != nil {
		n += proto.Size(v.Metadata)
	}
	return n
}

// SplitUpsert groups vectors, in order, into requests of at most
// maxRecords vectors whose estimated size stays within maxBytes. A vector
// larger than maxBytes is sent alone.
func SplitUpsert(vectors []*sdk.Vector, maxBytes, maxRecords int) [][]*sdk.Vector {
	var batches [][]*sdk.Vector
	start, size := 0, 0
	for i, v := range vectors {
		n := VectorSize(v)
		if i > start && (size+n > maxBytes || i-start >= maxRecords) {
			batches = append(batches, vectors[start:i])
			start, size = i, 0
		}
		size += n
	}
	if start < len(vectors) {
		batches = append(batches, vectors[start:])
	}
	return batches
}

// Query returns the topK nearest vectors in the namespace in the order
// Pinecone ranks them.
func (s *IndexService) Query(ctx context.Context, index, namespace string, vec []float32, topK int) ([]ragdoc.Match, error) {
	conn, err := s.conn(ctx, index, namespace)
	if err != nil {
		return nil, err
	}

	resp, err := conn.QueryByVectorValues(ctx, &sdk.QueryByVectorValuesRequest{
		Vector:          vec,
		TopK:            uint32(topK),
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, mapError(ctx, "query "+index, err)
	}

	matches := make([]ragdoc.Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		if m == nil || m.Vector == nil {
			continue
		}
		fields := m.Vector.Metadata.GetFields()
		matches = append(matches, ragdoc.Match{
			ID:    m.Vector.Id,
			Score: m.Score,
			Metadata: ragdoc.ChunkMetadata{
				Source:      fields["source"].GetStringValue(),
				ChunkIndex:  int(fields["chunk_index"].GetNumberValue()),
				Text:        fields["text"].GetStringValue(),
				ContentHash: fields["content_hash"].GetStringValue(),
			},
		})
	}
	return matches, nil
}

// mapError converts SDK errors to domain errors. Control plane failures
// carry an HTTP status, data plane failures a gRPC code.
func mapError(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	var perr *sdk.PineconeError
	if errors.As(err, &perr) {
		switch perr.Code {
		case http.StatusNotFound:
			return ragdoc.Errorf(ragdoc.ENOTFOUND, "pinecone %s: not found", op)
		case http.StatusConflict:
			return ragdoc.Errorf(ragdoc.ECONFLICT, "pinecone %s: already exists", op)
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return ragdoc.Errorf(ragdoc.EINVALID, "pinecone %s: %v", op, perr.Msg)
		case http.StatusUnauthorized, http.StatusForbidden:
			return ragdoc.Errorf(ragdoc.ECONFIG, "pinecone %s: unauthorized (status %d)", op, perr.Code)
		}
		return ragdoc.Errorf(ragdoc.EFETCH, "pinecone %s: status %d: %v", op, perr.Code, perr.Msg)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.NotFound:
			return ragdoc.Errorf(ragdoc.ENOTFOUND, "pinecone %s: not found", op)
		case codes.AlreadyExists:
			return ragdoc.Errorf(ragdoc.ECONFLICT, "pinecone %s: already exists", op)
		case codes.InvalidArgument, codes.ResourceExhausted:
			return ragdoc.Errorf(ragdoc.EINVALID, "pinecone %s: %s", op, st.Message())
		case codes.Unauthenticated, codes.PermissionDenied:
			return ragdoc.Errorf(ragdoc.ECONFIG, "pinecone %s: unauthorized", op)
		}
		return ragdoc.Errorf(ragdoc.EFETCH, "pinecone %s: %s", op, st.Message())
	}

	return ragdoc.Errorf(ragdoc.EFETCH, "pinecone %s: %v", op, err)
}
