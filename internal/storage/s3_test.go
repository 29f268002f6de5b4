package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.opentelemetry.io/otel/trace"
)

type fakeObjects struct {
	objects map[string][]byte
	putErr  error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (f *fakeObjects) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjects) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeObjects) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Store_SaveLoad(t *testing.T) {
	objs := newFakeObjects()
	s := NewS3Store(objs, "evalia", "")
	ctx := context.Background()

	if err := s.Save(ctx, sampleResults()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, ok := objs.objects["evalia/"+DefaultFileName]; !ok {
		t.Fatalf("object not stored under default key: %v", objs.objects)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.HRResults[0].Evaluation.Score != 7 {
		t.Errorf("score = %d, want 7", got.HRResults[0].Evaluation.Score)
	}
}

func TestS3Store_LoadMissing(t *testing.T) {
	s := NewS3Store(newFakeObjects(), "evalia", "results.json")
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMirrorStore_SecondaryFailureIgnored(t *testing.T) {
	primary := newFakeObjects()
	broken := newFakeObjects()
	broken.putErr = errors.New("bucket gone")

	m := NewMirrorStore(NewS3Store(primary, "a", ""), NewS3Store(broken, "b", ""))
	if err := m.Save(context.Background(), sampleResults()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := m.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func TestMirrorStore_PrimaryFailure(t *testing.T) {
	primary := newFakeObjects()
	primary.putErr = errors.New("denied")
	m := NewMirrorStore(NewS3Store(primary, "a", ""))
	if err := m.Save(context.Background(), sampleResults()); err == nil {
		t.Fatal("expected primary error")
	}
}

func TestMirrorStore_FailureLogCarriesTrace(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	broken := newFakeObjects()
	broken.putErr = errors.New("bucket gone")
	m := NewMirrorStore(NewS3Store(newFakeObjects(), "a", ""), NewS3Store(broken, "b", ""))
	if err := m.Save(ctx, sampleResults()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "mirror save failed") || !strings.Contains(out, sc.TraceID().String()) {
		t.Errorf("log = %s, want warning tagged with trace %s", out, sc.TraceID())
	}
}
