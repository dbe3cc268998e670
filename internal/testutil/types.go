package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/junioryono/ioc"
)

// Common test errors
var (
	ErrTest    = errors.New("test error")
	ErrInit    = errors.New("init error")
	ErrDestroy = errors.New("destroy error")
)

// Recorder collects lifecycle events across fixtures.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// DBProperties is a properties schema keyed "db".
type DBProperties struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

func (*DBProperties) PropertiesKey() string { return "db" }

// TestRepository is a singleton component without dependencies.
type TestRepository struct {
	ioc.BaseComponent
	ID string
}

func NewTestRepository() *TestRepository {
	return &TestRepository{ID: uuid.NewString()}
}

// TestService depends on the repository, the db properties and the
// TestLogger bean.
type TestService struct {
	ioc.BaseComponent
	Repo   *TestRepository
	DB     *DBProperties
	Logger *TestLogger
}

func (*TestService) Dependencies() []ioc.Dependency {
	return []ioc.Dependency{
		ioc.Field("Repo", func(s *TestService) **TestRepository { return &s.Repo }),
		ioc.Field("DB", func(s *TestService) **DBProperties { return &s.DB }),
		ioc.Field("Logger", func(s *TestService) **TestLogger { return &s.Logger }),
	}
}

// TestRequest is a prototype component.
type TestRequest struct {
	ioc.BasePrototype
	ID   string
	Repo *TestRepository
}

func NewTestRequest() *TestRequest {
	return &TestRequest{ID: uuid.NewString()}
}

func (*TestRequest) Dependencies() []ioc.Dependency {
	return []ioc.Dependency{
		ioc.Field("Repo", func(r *TestRequest) **TestRepository { return &r.Repo }),
	}
}

// TestLogger is produced by TestBeans.
type TestLogger struct {
	Prefix string
}

// TestBeans produces a TestLogger prefixed with the db host.
type TestBeans struct {
	ioc.BaseBeanCollection
}

func (*TestBeans) CreateTestLogger(db *DBProperties) *TestLogger {
	return &TestLogger{Prefix: db.Host}
}

// TestController is mounted under /users.
type TestController struct {
	Service *TestService
}

func (*TestController) ControllerPrefix() string { return "/users" }

func (*TestController) Dependencies() []ioc.Dependency {
	return []ioc.Dependency{
		ioc.Field("Service", func(c *TestController) **TestService { return &c.Service }),
	}
}

// Hooked records every lifecycle hook under its Name.
type Hooked struct {
	ioc.BaseComponent
	Name     string
	Recorder *Recorder
	FailInit bool
}

func (h *Hooked) Init(context.Context) error {
	h.Recorder.Record(h.Name + ".Init")
	if h.FailInit {
		return ErrInit
	}
	return nil
}

func (h *Hooked) Destroy(context.Context) error {
	h.Recorder.Record(h.Name + ".Destroy")
	return nil
}
