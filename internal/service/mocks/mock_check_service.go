package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"plagcheck/internal/model"
	"plagcheck/internal/service"
)

type MockCheckService struct {
	mock.Mock
}

func (m *MockCheckService) Check(ctx context.Context, r io.Reader, originalFilename string) (*service.CheckResult, error) {
	args := m.Called(ctx, r, originalFilename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CheckResult), args.Error(1)
}

func (m *MockCheckService) List(ctx context.Context, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockCheckService) Get(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}
