package backup

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/roomiesapp/roomies/internal/database"
	"github.com/roomiesapp/roomies/internal/model"
	"github.com/roomiesapp/roomies/internal/store"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, &s3NotFound{}
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(string(data))),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type s3NotFound struct{}

func (e *s3NotFound) Error() string { return "NoSuchKey" }

func validConfig() Config {
	return Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret"},
		Passphrase: "test-passphrase",
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config -> disabled
	m := NewManager(Config{}, nil, nil, slog.Default(), nil)
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
	if m.Enabled() {
		t.Error("expected disabled manager")
	}

	// Config without passphrase is still disabled
	noPass := validConfig()
	noPass.Passphrase = ""
	m2 := NewManager(noPass, nil, nil, slog.Default(), nil)
	if m2.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m2.Status().State, StateDisabled)
	}

	// Full config -> idle
	m3 := NewManager(validConfig(), nil, nil, slog.Default(), nil)
	if m3.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m3.Status().State, StateIdle)
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var received []Status
	var mu sync.Mutex
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(validConfig(), nil, nil, slog.Default(), cb)

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning {
		t.Errorf("first callback state = %q, want %q", received[0].State, StateRunning)
	}
	if received[1].State != StateIdle {
		t.Errorf("second callback state = %q, want %q", received[1].State, StateIdle)
	}
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(validConfig(), nil, nil, slog.Default(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic
	m.Stop()
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, nil, slog.Default(), nil)

	m.Start(context.Background()) // no-op while disabled
	m.Stop()
}

func TestRunNowUploadsEncryptedSnapshot(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "roomies.db")

	db, err := database.Open(dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := validConfig()
	cfg.DBPath = dbPath

	mock := newMockS3()
	m := NewManager(cfg, db, store.NewBackupStore(db), slog.Default(), nil)
	m.client = mock

	id, err := m.RunNow(context.Background())
	if err != nil {
		t.Fatalf("run now: %v", err)
	}

	record, err := store.NewBackupStore(db).GetByID(id)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if record.Status != model.BackupStatusCompleted {
		t.Errorf("status = %q, want completed", record.Status)
	}
	if record.SizeBytes == 0 {
		t.Error("expected non-zero size")
	}

	mock.mu.Lock()
	data, ok := mock.objects[record.S3Key]
	mock.mu.Unlock()
	if !ok {
		t.Fatalf("object %q not uploaded", record.S3Key)
	}
	if len(data) <= saltSize+nonceSize {
		t.Error("uploaded object too small to be an encrypted snapshot")
	}

	if m.Status().State != StateIdle {
		t.Errorf("state after backup = %q, want idle", m.Status().State)
	}
	if m.Status().LastBackup == nil {
		t.Error("expected last backup timestamp")
	}
}
