package mock

import (
	"errors"
	"sync/atomic"
)

var nextID atomic.Int64

func newID() int64 { return nextID.Add(1) }

// ErrBoot is returned by NewFailingDB.
var ErrBoot = errors.New("simulated boot failure")

// Core interfaces
type Logger interface {
	Log(msg string)
	ID() int64
}

type Database interface {
	Connect() error
	ID() int64
}

type Cache interface {
	Get(key string) interface{}
}

// Mock implementations
type ConsoleLogger struct {
	id    int64
	Lines []string
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{id: newID()}
}

func (l *ConsoleLogger) Log(msg string) { l.Lines = append(l.Lines, msg) }
func (l *ConsoleLogger) ID() int64      { return l.id }

type MockDB struct {
	id     int64
	Logger Logger
}

func NewMockDB(logger Logger) *MockDB {
	return &MockDB{id: newID(), Logger: logger}
}

func (m *MockDB) Connect() error { return nil }
func (m *MockDB) ID() int64      { return m.id }

type MockCache struct {
	DB Database
}

func NewMockCache(db Database) *MockCache {
	return &MockCache{DB: db}
}

func (m *MockCache) Get(key string) interface{} { return nil }

// FailingDB always fails to construct.
type FailingDB struct {
	MockDB
}

func NewFailingDB(logger Logger) (*FailingDB, error) {
	return nil, ErrBoot
}

// Clock is registered with the hierarchical lifetime in tests.
type Clock interface {
	ID() int64
}

type TickClock struct {
	id int64
}

func NewTickClock() *TickClock { return &TickClock{id: newID()} }

func (c *TickClock) ID() int64 { return c.id }

// Scheduler depends on a Clock.
type Scheduler interface {
	Clock() Clock
}

type CronScheduler struct {
	clock Clock
}

func NewCronScheduler(clock Clock) *CronScheduler {
	return &CronScheduler{clock: clock}
}

func (s *CronScheduler) Clock() Clock { return s.clock }

// Widget declares a parameterless and a one-parameter constructor.
type Widget struct {
	Logger Logger
	Via    string
}

func NewWidget() *Widget { return &Widget{Via: "empty"} }

func NewWidgetWithLogger(logger Logger) *Widget {
	return &Widget{Logger: logger, Via: "logger"}
}

func NewWidgetWithLoggerAlt(logger Logger) *Widget {
	return &Widget{Logger: logger, Via: "logger-alt"}
}

// Gadget declares a preferred constructor with fewer parameters than another one.
type Gadget struct {
	Logger Logger
	DB     Database
	Via    string
}

func NewGadget(logger Logger, db Database) *Gadget {
	return &Gadget{Logger: logger, DB: db, Via: "wide"}
}

func NewGadgetPreferred(logger Logger) *Gadget {
	return &Gadget{Logger: logger, Via: "preferred"}
}

// Circular dependency test types
type CircularService1 interface {
	GetService2() CircularService2
}

type CircularService2 interface {
	GetService1() CircularService1
}

type CircularImpl1 struct {
	svc2 CircularService2
}

func NewCircularImpl1(svc2 CircularService2) *CircularImpl1 { return &CircularImpl1{svc2: svc2} }

func (i *CircularImpl1) GetService2() CircularService2 { return i.svc2 }

type CircularImpl2 struct {
	svc1 CircularService1
}

func NewCircularImpl2(svc1 CircularService1) *CircularImpl2 { return &CircularImpl2{svc1: svc1} }

func (i *CircularImpl2) GetService1() CircularService1 { return i.svc1 }

// Deep dependency chain
type DeepService3 interface {
	GetValue() string
}

type DeepService2 interface {
	GetService3() DeepService3
}

type DeepService1 interface {
	GetService2() DeepService2
}

type DeepImpl3 struct {
	Value string
}

func NewDeepImpl3() *DeepImpl3 { return &DeepImpl3{Value: "deep"} }

func (d *DeepImpl3) GetValue() string { return d.Value }

type DeepImpl2 struct {
	svc3 DeepService3
}

func NewDeepImpl2(svc3 DeepService3) *DeepImpl2 { return &DeepImpl2{svc3: svc3} }

func (d *DeepImpl2) GetService3() DeepService3 { return d.svc3 }

type DeepImpl1 struct {
	svc2 DeepService2
}

func NewDeepImpl1(svc2 DeepService2) *DeepImpl1 { return &DeepImpl1{svc2: svc2} }

func (d *DeepImpl1) GetService2() DeepService2 { return d.svc2 }

// Unrelated implements none of the interfaces above.
type Unrelated struct{}
