package report

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cuongbtq/poke-report/internal/report/domain"
)

type statusCall struct {
	ID     int64
	Status domain.Status
	URL    string
}

type fakeStatusStore struct {
	mu        sync.Mutex
	jobs      map[int64]*domain.Job
	calls     []statusCall
	getErr    error
	updateErr map[domain.Status]error

	// afterUpdate runs after each recorded write, outside the lock
	afterUpdate func(domain.Status)
}

func newFakeStatusStore(jobs ...*domain.Job) *fakeStatusStore {
	s := &fakeStatusStore{
		jobs:      make(map[int64]*domain.Job),
		updateErr: make(map[domain.Status]error),
	}
	for _, j := range jobs {
		s.jobs[j.ID] = j
	}
	return s
}

func (s *fakeStatusStore) GetRequest(_ context.Context, id int64) (*domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	job, ok := s.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (s *fakeStatusStore) UpdateRequest(ctx context.Context, id int64, status domain.Status, url string) error {
	if err := ctx.Err(); err != nil {
		return domain.NewTransportError("update request", err)
	}
	if err := s.record(id, status, url); err != nil {
		return err
	}
	if s.afterUpdate != nil {
		s.afterUpdate(status)
	}
	return nil
}

func (s *fakeStatusStore) record(id int64, status domain.Status, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, statusCall{ID: id, Status: status, URL: url})
	if err := s.updateErr[status]; err != nil {
		return err
	}
	if job, ok := s.jobs[id]; ok {
		job.Status = status
		job.URL = url
	}
	return nil
}

func (s *fakeStatusStore) statuses() []domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Status, len(s.calls))
	for i, c := range s.calls {
		out[i] = c.Status
	}
	return out
}

func (s *fakeStatusStore) lastCall() statusCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[len(s.calls)-1]
}

type fakeCatalog struct {
	items      map[string][]domain.CatalogItem
	details    map[string]*domain.ItemDetail
	failDetail map[string]error
	listErr    error
	detailHits []string

	// blockDetail makes GetDetail wait for the context to end
	blockDetail bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		items:      make(map[string][]domain.CatalogItem),
		details:    make(map[string]*domain.ItemDetail),
		failDetail: make(map[string]error),
	}
}

// addItems registers n fully populated items under category
func (c *fakeCatalog) addItems(category string, n int) []domain.CatalogItem {
	items := make([]domain.CatalogItem, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("%s-mon-%d", category, i+1)
		url := "https://catalog.test/api/v2/pokemon/" + name
		items[i] = domain.CatalogItem{Name: name, URL: url}
		height, weight := 10+i, 100+i
		c.details[url] = &domain.ItemDetail{
			Stats: map[string]int{
				"hp": 40 + i, "attack": 50 + i, "defense": 60 + i,
				"special-attack": 70 + i, "special-defense": 80 + i, "speed": 90 + i,
			},
			Abilities: []string{"overgrow", "chlorophyll"},
			Height:    &height,
			Weight:    &weight,
		}
	}
	c.items[category] = append(c.items[category], items...)
	return items
}

func (c *fakeCatalog) ListByType(_ context.Context, category string) ([]domain.CatalogItem, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.items[category], nil
}

func (c *fakeCatalog) GetDetail(ctx context.Context, itemURL string) (*domain.ItemDetail, error) {
	if c.blockDetail {
		<-ctx.Done()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.detailHits = append(c.detailHits, itemURL)
	if err := c.failDetail[itemURL]; err != nil {
		return nil, err
	}
	d, ok := c.details[itemURL]
	if !ok {
		return nil, errors.New("detail not found")
	}
	return d, nil
}

type fakeUploader struct {
	blobs       map[string][]byte
	contentType map[string]string
	err         error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{blobs: make(map[string][]byte), contentType: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, name string, data []byte, contentType string) error {
	if u.err != nil {
		return u.err
	}
	u.blobs[name] = append([]byte(nil), data...)
	u.contentType[name] = contentType
	return nil
}

func (u *fakeUploader) URL(name string) string {
	return "https://account.blob.test/reports/" + name
}
