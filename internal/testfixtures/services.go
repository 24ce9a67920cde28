package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/appointment-scheduler/internal/application"
	"github.com/example/appointment-scheduler/internal/persistence"
	"github.com/example/appointment-scheduler/internal/persistence/memory"
)

// ServiceFactory assists tests with constructing application services
// using deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// AppointmentServiceDeps captures dependencies for constructing an
// appointment service.
type AppointmentServiceDeps struct {
	Appointments persistence.AppointmentRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewAppointmentService builds an appointment service using the supplied
// dependencies combined with the factory defaults. A nil repository is
// replaced with a fresh in-memory store.
func (f *ServiceFactory) NewAppointmentService(deps AppointmentServiceDeps) *application.AppointmentService {
	repo := deps.Appointments
	if repo == nil {
		repo = memory.NewStore()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewAppointmentServiceWithLogger(repo, idGen, now, deps.Logger)
}

// ParticipantServiceDeps captures dependencies for constructing a
// participant service.
type ParticipantServiceDeps struct {
	Participants persistence.ParticipantRepository
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewParticipantService builds a participant service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewParticipantService(deps ParticipantServiceDeps) *application.ParticipantService {
	repo := deps.Participants
	if repo == nil {
		repo = memory.NewStore()
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = f.IDGenerator.NextFunc()
	}
	now := deps.Now
	if now == nil {
		now = f.Clock.NowFunc()
	}
	return application.NewParticipantServiceWithLogger(repo, idGen, now, deps.Logger)
}

// Bundle wires both services onto one shared in-memory store so tests
// exercising cross-service behavior see a single source of truth.
type Bundle struct {
	Store        *memory.Store
	Appointments *application.AppointmentService
	Participants *application.ParticipantService
}

// NewBundle constructs a full service bundle on a fresh in-memory store.
func (f *ServiceFactory) NewBundle() Bundle {
	store := memory.NewStore()
	return Bundle{
		Store:        store,
		Appointments: f.NewAppointmentService(AppointmentServiceDeps{Appointments: store}),
		Participants: f.NewParticipantService(ParticipantServiceDeps{Participants: store}),
	}
}
