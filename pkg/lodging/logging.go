package lodging

import "context"

// ServiceOption configures a Service instance.
type ServiceOption func(*Service)

// OperationLogger records domain-level events emitted by Service operations.
type OperationLogger interface {
	LogOperation(ctx context.Context, entry OperationLog)
}

// OperationLog describes a state-changing lodging operation.
type OperationLog struct {
	Operation  string
	CycleID    CycleID
	ResourceID ResourceID
	RecordID   string
	Actor      UserID
	Status     string
	Error      error
}

// WithOperationLogger wires a logger that receives callbacks for every operation.
func WithOperationLogger(logger OperationLogger) ServiceOption {
	return func(service *Service) {
		service.logger = logger
	}
}

// WithAuthorizer replaces the default RoleAuthorizer.
func WithAuthorizer(authorizer Authorizer) ServiceOption {
	return func(service *Service) {
		if authorizer != nil {
			service.authorizer = authorizer
		}
	}
}

// WithTimelineCache wires a cache for ProjectWeek results.
func WithTimelineCache(cache TimelineCache) ServiceOption {
	return func(service *Service) {
		service.timelineCache = cache
	}
}

// WithIDGenerator replaces the identifier generator used for new records.
func WithIDGenerator(generate func() string) ServiceOption {
	return func(service *Service) {
		if generate != nil {
			service.newID = generate
		}
	}
}
