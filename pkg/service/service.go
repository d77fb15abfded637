// Package service implements the task-management operations on top of the
// repositories, the credential service and the access policy. Operations never
// return errors: every outcome is reported in a success/message envelope.
package service

import (
	"sync"

	"taskhub-backend/pkg/apperr"
	"taskhub-backend/pkg/auth"
	"taskhub-backend/pkg/database"
	"taskhub-backend/pkg/metrics"
	"taskhub-backend/pkg/utils"

	"github.com/rs/zerolog"
)

// Response is the envelope for operations that return data.
type Response[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Result is the envelope for operations without a payload.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LoginResult carries the bearer token of a successful login.
type LoginResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// Options wires a Service. Policy defaults to auth.DefaultPolicy and Metrics
// may be nil.
type Options struct {
	Store   database.DatabaseInterface
	Hasher  *utils.PasswordHasher
	Tokens  *utils.JWTService
	Policy  *auth.Policy
	Metrics *metrics.Metrics
	Logger  zerolog.Logger

	// UnifiedLoginErrors reports both login failures as "Invalid email or
	// password".
	UnifiedLoginErrors bool
}

// Service runs the operations.
type Service struct {
	store              database.DatabaseInterface
	hasher             *utils.PasswordHasher
	tokens             *utils.JWTService
	policy             *auth.Policy
	metrics            *metrics.Metrics
	logger             zerolog.Logger
	unifiedLoginErrors bool

	dummyHashOnce sync.Once
	dummyHash     string
}

// New creates a Service.
func New(opts Options) *Service {
	policy := opts.Policy
	if policy == nil {
		policy = auth.DefaultPolicy()
	}
	return &Service{
		store:              opts.Store,
		hasher:             opts.Hasher,
		tokens:             opts.Tokens,
		policy:             policy,
		metrics:            opts.Metrics,
		logger:             opts.Logger.With().Str("component", "service").Logger(),
		unifiedLoginErrors: opts.UnifiedLoginErrors,
	}
}

// Policy returns the access policy in force.
func (s *Service) Policy() *auth.Policy {
	return s.policy
}

// failure logs err and returns the caller-facing message. Classified errors
// keep their message; anything else becomes "Error <action>".
func (s *Service) failure(op auth.Operation, action string, err error) string {
	s.metrics.RecordOperation(string(op), false)

	msg := apperr.MessageOf(err)
	if msg == "" {
		s.logger.Error().Err(err).Str("operation", string(op)).Msg("operation failed")
		return "Error " + action
	}
	s.logger.Debug().Str("operation", string(op)).Str("kind", string(apperr.KindOf(err))).Msg(msg)
	return msg
}

func (s *Service) succeeded(op auth.Operation) {
	s.metrics.RecordOperation(string(op), true)
}

func ok[T any](s *Service, op auth.Operation, msg string, data T) Response[T] {
	s.succeeded(op)
	return Response[T]{Success: true, Message: msg, Data: data}
}

func fail[T any](s *Service, op auth.Operation, action string, err error, data T) Response[T] {
	return Response[T]{Message: s.failure(op, action, err), Data: data}
}

func done(s *Service, op auth.Operation, msg string) Result {
	s.succeeded(op)
	return Result{Success: true, Message: msg}
}

func failed(s *Service, op auth.Operation, action string, err error) Result {
	return Result{Message: s.failure(op, action, err)}
}
