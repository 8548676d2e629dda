// Package mocks provides test doubles for the places client.
package mocks

import (
	"context"

	mock "github.com/stretchr/testify/mock"

	places "github.com/sells-group/contact-cli/pkg/places"
)

// MockClient is a mock type for the Client interface.
type MockClient struct {
	mock.Mock
}

// FindBusiness provides a mock function with given fields: ctx, req
func (_m *MockClient) FindBusiness(ctx context.Context, req places.FindRequest) (*places.Business, error) {
	ret := _m.Called(ctx, req)

	if len(ret) == 0 {
		panic("no return value specified for FindBusiness")
	}

	var r0 *places.Business
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, places.FindRequest) (*places.Business, error)); ok {
		return rf(ctx, req)
	}
	if rf, ok := ret.Get(0).(func(context.Context, places.FindRequest) *places.Business); ok {
		r0 = rf(ctx, req)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*places.Business)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, places.FindRequest) error); ok {
		r1 = rf(ctx, req)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewMockClient creates a new instance of MockClient.
func NewMockClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockClient {
	mock := &MockClient{}
	mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
