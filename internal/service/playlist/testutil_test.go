package playlist

import (
	"encoding/json"
	"sync"
	"time"

	apperrors "github.com/yourusername/geoquiz-api/internal/pkg/errors"
)

// fakeCache — потокобезопасная in-memory реализация
// repository.CacheRepository для тестов ядра
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Set(key string, value interface{}, expiration time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case string:
		f.data[key] = []byte(v)
	case []byte:
		f.data[key] = v
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		f.data[key] = data
	}
	return nil
}

func (f *fakeCache) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	if !ok {
		return "", apperrors.ErrNotFound
	}
	return string(data), nil
}

func (f *fakeCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeCache) Increment(key string) (int64, error) {
	return 0, nil
}

func (f *fakeCache) SetJSON(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = data
	return nil
}

func (f *fakeCache) GetJSON(key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[key]
	if !ok {
		return apperrors.ErrNotFound
	}
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Exists(key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok, nil
}

func (f *fakeCache) ExpireAt(key string, expiration time.Time) error {
	return nil
}

func (f *fakeCache) SetNX(key string, value interface{}, expiration time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return false, err
	}
	f.data[key] = data
	return true, nil
}
