package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/yanqian/food-waste-predictor/internal/domain/prediction"
	"github.com/yanqian/food-waste-predictor/internal/domain/records"
)

// ObjectStore keeps one JSON object per record in an S3 compatible bucket (R2, MinIO, S3).
type ObjectStore struct {
	client *minio.Client
	bucket string
	prefix string
	logger *slog.Logger
}

// ObjectStoreConfig carries the connection settings of an ObjectStore.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Prefix    string
}

// NewObjectStore constructs the storage adapter.
func NewObjectStore(cfg ObjectStoreConfig, logger *slog.Logger) (*ObjectStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("object store bucket is empty")
	}
	useSSL := !strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Endpoint)), "http://")
	client, err := minio.New(sanitizeEndpoint(cfg.Endpoint), &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       useSSL,
		Region:       cfg.Region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init object store client: %w", err)
	}
	prefix := strings.Trim(cfg.Prefix, "/")
	if prefix == "" {
		prefix = "records"
	}
	return &ObjectStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: prefix,
		logger: logger.With("component", "recordstore.object"),
	}, nil
}

func (s *ObjectStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err == nil && exists {
		return nil
	}
	err = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "BucketAlreadyOwnedByYou" {
		return err
	}
	return nil
}

func (s *ObjectStore) Append(ctx context.Context, record records.DailyRecord) error {
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = s.client.PutObject(ctx, s.bucket, objectKey(s.prefix, record), bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType:      "application/json",
		DisableMultipart: true,
	})
	if err != nil {
		return fmt.Errorf("put record object: %w", err)
	}
	return nil
}

func (s *ObjectStore) ReadHistory(ctx context.Context) ([]prediction.HistoricalRecord, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var stored []records.DailyRecord
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix + "/", Recursive: true})
	for info := range objects {
		if info.Err != nil {
			if minio.ToErrorResponse(info.Err).Code == "NoSuchBucket" {
				return []prediction.HistoricalRecord{}, nil
			}
			return nil, fmt.Errorf("list record objects: %w", info.Err)
		}
		if !strings.HasSuffix(info.Key, ".json") {
			continue
		}
		record, err := s.fetch(ctx, info.Key)
		if err != nil {
			s.logger.Warn("skip unreadable record object", "key", info.Key, "error", err)
			continue
		}
		stored = append(stored, record)
	}
	return historyFromRecords(stored), nil
}

func (s *ObjectStore) fetch(ctx context.Context, key string) (records.DailyRecord, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return records.DailyRecord{}, err
	}
	defer obj.Close()
	return decodeRecord(obj)
}

func (s *ObjectStore) Close() error { return nil }

// objectKey lays records out as <prefix>/<date>/<id>.json.
func objectKey(prefix string, record records.DailyRecord) string {
	return path.Join(prefix, record.Date, record.ID+".json")
}

func decodeRecord(r io.Reader) (records.DailyRecord, error) {
	var record records.DailyRecord
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return records.DailyRecord{}, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

// historyFromRecords orders records by service day then recording time.
func historyFromRecords(stored []records.DailyRecord) []prediction.HistoricalRecord {
	sort.SliceStable(stored, func(i, j int) bool {
		if stored[i].Date != stored[j].Date {
			return stored[i].Date < stored[j].Date
		}
		return stored[i].RecordedAt.Before(stored[j].RecordedAt)
	})
	out := make([]prediction.HistoricalRecord, 0, len(stored))
	for _, record := range stored {
		out = append(out, record.Historical())
	}
	return out
}

// sanitizeEndpoint removes schemes and paths to satisfy minio.New expectations.
func sanitizeEndpoint(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if idx := strings.Index(raw, "/"); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

var _ records.Store = (*ObjectStore)(nil)
