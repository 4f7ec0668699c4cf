package storage

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// s3Fake is an in-memory S3 endpoint speaking the path-style subset the
// minio client uses: bucket location, head/create bucket, put, get, head,
// delete and list-objects v2.
type s3Fake struct {
	mu      sync.Mutex
	buckets map[string]map[string][]byte
	created int
}

func newS3Fake() *s3Fake {
	return &s3Fake{buckets: make(map[string]map[string][]byte)}
}

var s3Modified = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func (f *s3Fake) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, key, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	query := r.URL.Query()

	if _, ok := query["location"]; ok && key == "" {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>`+
			`<LocationConstraint xmlns="http://s3.amazonaws.com/doc/2006-03-01/">us-east-1</LocationConstraint>`)
		return
	}

	objects, exists := f.buckets[bucket]
	switch {
	case key == "" && r.Method == http.MethodHead:
		if !exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case key == "" && r.Method == http.MethodPut:
		f.buckets[bucket] = make(map[string][]byte)
		f.created++
	case !exists:
		s3Error(w, http.StatusNotFound, "NoSuchBucket", bucket, key)
	case key == "" && r.Method == http.MethodGet:
		f.list(w, bucket, query.Get("prefix"))
	case r.Method == http.MethodPut:
		data, err := readPayload(r)
		if err != nil {
			s3Error(w, http.StatusBadRequest, "IncompleteBody", bucket, key)
			return
		}
		objects[key] = data
		w.Header().Set("ETag", `"`+strconv.Itoa(len(data))+`"`)
	case r.Method == http.MethodGet || r.Method == http.MethodHead:
		data, ok := objects[key]
		if !ok {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			s3Error(w, http.StatusNotFound, "NoSuchKey", bucket, key)
			return
		}
		h := w.Header()
		h.Set("Content-Length", strconv.Itoa(len(data)))
		h.Set("Content-Type", "application/octet-stream")
		h.Set("Last-Modified", s3Modified.Format(http.TimeFormat))
		h.Set("ETag", `"`+strconv.Itoa(len(data))+`"`)
		if r.Method == http.MethodGet {
			_, _ = w.Write(data)
		}
	case r.Method == http.MethodDelete:
		delete(objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		s3Error(w, http.StatusNotImplemented, "NotImplemented", bucket, key)
	}
}

func (f *s3Fake) list(w http.ResponseWriter, bucket, prefix string) {
	var keys []string
	for k := range f.buckets[bucket] {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	b.WriteString(`<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/">`)
	fmt.Fprintf(&b, "<Name>%s</Name><Prefix>%s</Prefix><KeyCount>%d</KeyCount>", escape(bucket), escape(prefix), len(keys))
	b.WriteString("<MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated>")
	for _, k := range keys {
		fmt.Fprintf(&b, "<Contents><Key>%s</Key><LastModified>%s</LastModified><ETag>&quot;%d&quot;</ETag><Size>%d</Size><StorageClass>STANDARD</StorageClass></Contents>",
			escape(k), s3Modified.Format(time.RFC3339), len(f.buckets[bucket][k]), len(f.buckets[bucket][k]))
	}
	b.WriteString("</ListBucketResult>")
	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(b.Bytes())
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func s3Error(w http.ResponseWriter, status int, code, bucket, key string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>%s</Code><Message>%s</Message>`+
		`<BucketName>%s</BucketName><Key>%s</Key><Resource>/%s/%s</Resource><RequestId>1</RequestId><HostId>1</HostId></Error>`,
		code, code, escape(bucket), escape(key), escape(bucket), escape(key))
}

// readPayload returns the object body, decoding the aws-chunked framing the
// client uses for signed uploads over plain http
func readPayload(r *http.Request) ([]byte, error) {
	if !strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
		return io.ReadAll(r.Body)
	}
	var out []byte
	br := bufio.NewReader(r.Body)
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, err
		}
		size, _, _ := strings.Cut(strings.TrimSpace(line), ";")
		n, err := strconv.ParseInt(size, 16, 64)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		chunk := make([]byte, n+2)
		if _, err = io.ReadFull(br, chunk); err != nil {
			return nil, err
		}
		out = append(out, chunk[:n]...)
	}
}

func openFake(t *testing.T, fake *s3Fake) Store {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	s, err := Open(context.Background(), "minio", "", MinioConfig{
		Endpoint:  strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "letters",
		SecretKey: "letters-secret",
		Bucket:    "artifacts",
	})
	require.NoError(t, err)
	return s
}

func TestMinioStore(t *testing.T) {
	ctx := context.Background()
	fake := newS3Fake()
	s := openFake(t, fake)
	assert.Equal(t, 1, fake.created, "bucket created on open")

	require.NoError(t, s.Put(ctx, "dataset/manifest.yaml", []byte("v1")))
	require.NoError(t, s.Put(ctx, "dataset/a.gz", []byte("a")))
	require.NoError(t, s.Put(ctx, "datasets/other", []byte("o")))
	require.NoError(t, s.Put(ctx, "model/model.json.lzw", []byte("m")))
	require.NoError(t, s.Put(ctx, "dataset/manifest.yaml", []byte("v2")))

	data, err := s.Get(ctx, "dataset/manifest.yaml")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	ok, err := s.Exists(ctx, "dataset/a.gz")
	require.NoError(t, err)
	assert.True(t, ok)

	keys, err := s.List(ctx, "dataset")
	require.NoError(t, err)
	assert.Equal(t, []string{"dataset/a.gz", "dataset/manifest.yaml"}, keys)

	require.NoError(t, s.Delete(ctx, "dataset/a.gz"))
	require.NoError(t, s.Delete(ctx, "dataset/a.gz"))
	_, err = s.Get(ctx, "dataset/a.gz")
	assert.ErrorIs(t, err, ErrNotExist)
	ok, err = s.Exists(ctx, "dataset/a.gz")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "s3://artifacts/model/model.json.lzw", s.Location("model/model.json.lzw"))
}

func TestMinioStoreReopen(t *testing.T) {
	fake := newS3Fake()
	fake.buckets["artifacts"] = map[string][]byte{"model/model.json.lzw": []byte("m")}
	s := openFake(t, fake)
	assert.Zero(t, fake.created, "existing bucket kept")

	data, err := s.Get(context.Background(), "model/model.json.lzw")
	require.NoError(t, err)
	assert.Equal(t, []byte("m"), data)
}

func TestMinioStoreUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewMinioStore(ctx, MinioConfig{Endpoint: endpoint, Bucket: "artifacts"})
	assert.Error(t, err)
}
