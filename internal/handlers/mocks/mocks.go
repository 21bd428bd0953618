package mocks

import (
	"context"
	"errors"

	"github.com/RoGogDBD/canteen/internal/projection"
)

type ImageResolverMock struct {
	ResolveFunc  func(ctx context.Context, uri string) string
	ResolveCalls int
}

func (m *ImageResolverMock) Resolve(ctx context.Context, uri string) string {
	m.ResolveCalls++
	if m.ResolveFunc == nil {
		return uri
	}
	return m.ResolveFunc(ctx, uri)
}

type ProjectionManagerMock struct {
	ActivateFunc    func(ctx context.Context, userID string) (projection.Projection, error)
	DeactivateFunc  func(userID string)
	SnapshotFunc    func(userID string) (projection.Projection, bool)
	ActivateCalls   int
	DeactivateCalls int
	SnapshotCalls   int
}

func (m *ProjectionManagerMock) Activate(ctx context.Context, userID string) (projection.Projection, error) {
	m.ActivateCalls++
	if m.ActivateFunc == nil {
		return nil, errors.New("ActivateFunc not set")
	}
	return m.ActivateFunc(ctx, userID)
}

func (m *ProjectionManagerMock) Deactivate(userID string) {
	m.DeactivateCalls++
	if m.DeactivateFunc != nil {
		m.DeactivateFunc(userID)
	}
}

func (m *ProjectionManagerMock) Snapshot(userID string) (projection.Projection, bool) {
	m.SnapshotCalls++
	if m.SnapshotFunc == nil {
		return nil, false
	}
	return m.SnapshotFunc(userID)
}

type SessionStoreMock struct {
	CreateFunc  func(ctx context.Context, userID string) (string, error)
	UserIDFunc  func(ctx context.Context, sessionID string) (string, error)
	DeleteFunc  func(ctx context.Context, sessionID string) error
	CreateCalls int
	UserIDCalls int
	DeleteCalls int
}

func (m *SessionStoreMock) Create(ctx context.Context, userID string) (string, error) {
	m.CreateCalls++
	if m.CreateFunc == nil {
		return "", errors.New("CreateFunc not set")
	}
	return m.CreateFunc(ctx, userID)
}

func (m *SessionStoreMock) UserID(ctx context.Context, sessionID string) (string, error) {
	m.UserIDCalls++
	if m.UserIDFunc == nil {
		return "", errors.New("UserIDFunc not set")
	}
	return m.UserIDFunc(ctx, sessionID)
}

func (m *SessionStoreMock) Delete(ctx context.Context, sessionID string) error {
	m.DeleteCalls++
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, sessionID)
}
